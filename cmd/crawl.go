// Package cmd defines and implements the CLI commands for the metallyrics executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/config"
	"github.com/darkstats/metallyrics/internal/crawl"
	"github.com/darkstats/metallyrics/internal/darklyrics"
	"github.com/darkstats/metallyrics/internal/lang"
)

// newCrawlCmd creates and configures the 'crawl' subcommand. It crawls one
// quarter of the site's artist index and writes the quarter's dataset file,
// checkpointing along the way so an interrupted run resumes where it left off.
func newCrawlCmd() *cobra.Command {
	var (
		user    string
		quarter int
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl one quarter of the artist index",
		Long: `Fetches the full artist index, takes the quarter assigned to the
given user, and scrapes every album and song of every artist in it.
Progress is checkpointed after each artist; Ctrl-C leaves a checkpoint
behind and a rerun picks up from it.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), user, quarter)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "crawl user (florent, nizar, mathis or rayen); determines the quarter")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "explicit quarter number; overrides --user")
	return cmd
}

func runCrawl(ctx context.Context, user string, quarter int) error {
	rt, err := resolveRuntime(ctx)
	if err != nil {
		return err
	}
	cfg := rt.cfg

	if quarter == 0 {
		if user == "" {
			return errors.New("either --user or --quarter is required")
		}
		quarter, err = crawl.QuarterForUser(user)
		if err != nil {
			return err
		}
	}
	if quarter < 1 || quarter > cfg.Crawler.Quarters {
		return fmt.Errorf("quarter %d out of range 1..%d", quarter, cfg.Crawler.Quarters)
	}
	if user == "" {
		user = fmt.Sprintf("quarter%d", quarter)
	}

	client, err := darklyrics.NewClient(darklyrics.ClientConfig{
		BaseURL:        cfg.Site.BaseURL,
		UserAgent:      cfg.Site.UserAgent,
		RequestTimeout: cfg.Site.RequestTimeout,
		Delay:          cfg.Site.Delay,
		IndexLetters:   cfg.Site.IndexLetters,
	}, rt.logger)
	if err != nil {
		return fmt.Errorf("init site client: %w", err)
	}

	store, closeStore, err := buildCheckpointStore(ctx, cfg, rt.logger)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := crawl.NewRunner(crawl.RunnerConfig{
		Quarter:         quarter,
		Quarters:        cfg.Crawler.Quarters,
		User:            user,
		DataDir:         cfg.Crawler.DataDir,
		CheckpointEvery: cfg.Crawler.CheckpointEvery,
	}, client, store, lang.Detect, rt.logger)

	if cfg.Server.StatusAddr != "" {
		status := crawl.NewStatusServer(cfg.Server.StatusAddr, runner.Snapshot, rt.logger)
		status.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := status.Shutdown(shutdownCtx); serr != nil {
				rt.logger.Warn("Status server shutdown failed", zap.Error(serr))
			}
		}()
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(runCtx); err != nil {
		if errors.Is(err, context.Canceled) {
			rt.logger.Info("Crawl interrupted; rerun the same command to resume")
			return nil
		}
		return fmt.Errorf("run crawl: %w", err)
	}

	rt.logger.Info("Crawl command finished.")
	return nil
}

// buildCheckpointStore picks the checkpoint backend from the config. The
// returned cleanup func is a no-op for the file store.
func buildCheckpointStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (crawl.Store, func(), error) {
	switch cfg.Checkpoint.Driver {
	case "postgres":
		store, err := crawl.NewPGStore(ctx, crawl.PGStoreConfig{DSN: cfg.Checkpoint.DSN})
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres checkpoint store: %w", err)
		}
		return store, store.Close, nil
	default:
		store, err := crawl.NewFileStore(cfg.Crawler.DataDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init file checkpoint store: %w", err)
		}
		return store, func() {}, nil
	}
}
