package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/analyze"
	"github.com/darkstats/metallyrics/internal/lang"
)

// newAnalyzeCmd creates and configures the 'analyze' subcommand. It merges
// one or more dataset files and renders the full chart report.
func newAnalyzeCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "analyze [dataset files...]",
		Short: "Render charts over collected datasets",
		Long: `Loads the given dataset files (or every complete_dataset_*.json
under the data directory when none are given), merges them, and writes
the chart report: lyrics coverage, publication types, top artists,
songs per year and language breakdowns.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args, outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "chart output directory; overrides analyze.output_dir")
	return cmd
}

func runAnalyze(ctx context.Context, paths []string, outDir string) error {
	rt, err := resolveRuntime(ctx)
	if err != nil {
		return err
	}
	cfg := rt.cfg

	if len(paths) == 0 {
		pattern := filepath.Join(cfg.Crawler.DataDir, "complete_dataset_*.json")
		paths, err = filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("glob datasets: %w", err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no dataset files match %s; run crawl first or pass files explicitly", pattern)
		}
	}

	ds, err := analyze.Load(paths, rt.logger)
	if err != nil {
		return err
	}
	artists, albums, songs := ds.Counts()
	rt.logger.Info("Datasets merged",
		zap.Int("files", len(paths)),
		zap.Int("artists", artists),
		zap.Int("albums", albums),
		zap.Int("songs", songs),
	)

	swears, err := analyze.LoadSwearWords(cfg.Analyze.SwearsFile)
	if err != nil {
		return err
	}

	if outDir == "" {
		outDir = cfg.Analyze.OutputDir
	}
	renderer, err := analyze.NewRenderer(outDir, rt.logger)
	if err != nil {
		return err
	}
	if err := renderer.RenderAll(ds, analyze.Options{
		MinLyricsLen:      cfg.Analyze.MinLyricsLen,
		TopArtists:        cfg.Analyze.TopArtists,
		TopLanguagesPie:   cfg.Analyze.TopLanguagesPie,
		TopLanguagesTable: cfg.Analyze.TopLanguagesTable,
		TopBands:          cfg.Analyze.TopBands,
		Swears:            swears,
		Detect:            lang.Detect,
	}); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	rt.logger.Info("Analyze command finished.", zap.String("output_dir", outDir))
	return nil
}
