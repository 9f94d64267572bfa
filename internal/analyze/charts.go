package analyze

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/lang"
	"github.com/darkstats/metallyrics/internal/model"
)

// Output filenames produced by RenderAll.
const (
	FileLyricsSplit       = "lyrics_split.png"
	FilePubTypes          = "publication_types.png"
	FileTopBySongs        = "top_artists_by_songs.png"
	FileTopByAlbums       = "top_artists_by_albums.png"
	FileSongsByYear       = "songs_by_year.png"
	FileLanguagesPie      = "languages_top.png"
	FileLanguageTable     = "languages_table.txt"
	FileSwearScatter      = "swear_vs_readability.png"
	FileSwearByYear       = "swear_ratio_by_year.png"
	FileReadabilityByYear = "readability_by_year.png"
	FileStupidSongs       = "stupid_songs_curve.png"
)

// Options controls the aggregations behind the rendered report.
type Options struct {
	MinLyricsLen      int
	TopArtists        int
	TopLanguagesPie   int
	TopLanguagesTable int
	// TopBands bounds how many artists feed the content charts; <= 0
	// keeps all of them.
	TopBands int
	// Swears is the profanity list for the swear-ratio charts; empty
	// skips them.
	Swears []string
	Detect lang.DetectFunc
}

// Renderer writes chart files into a single output directory.
type Renderer struct {
	outDir string
	logger *zap.Logger
}

// NewRenderer creates outDir if needed.
func NewRenderer(outDir string, logger *zap.Logger) (*Renderer, error) {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", outDir, err)
	}
	return &Renderer{outDir: outDir, logger: logger}, nil
}

// RenderAll computes every aggregation and writes one file per chart. A
// failed chart is logged and does not stop the others; the joined errors
// come back to the caller. Charts whose denominator is empty are skipped.
func (r *Renderer) RenderAll(ds model.Dataset, opts Options) error {
	var errs []error
	fail := func(name string, err error) {
		r.logger.Error("Chart failed", zap.String("chart", name), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	split := SplitByLyrics(ds, opts.MinLyricsLen)
	if split.With+split.Without == 0 {
		r.logger.Warn("No songs in dataset, skipping lyrics split chart")
	} else if err := r.Pie(FileLyricsSplit, "Songs With vs Without Lyrics", []LabelCount{
		{Label: "With Lyrics", Count: split.With},
		{Label: "Without Lyrics", Count: split.Without},
	}); err != nil {
		fail(FileLyricsSplit, err)
	}

	if types := PublicationTypes(ds); len(types) == 0 {
		r.logger.Warn("No albums in dataset, skipping publication type chart")
	} else if err := r.Pie(FilePubTypes, "Publication Types", types); err != nil {
		fail(FilePubTypes, err)
	}

	if top := TopArtistsBySongs(ds, opts.TopArtists); len(top) == 0 {
		r.logger.Warn("No artists in dataset, skipping top-by-songs chart")
	} else if err := r.Bar(FileTopBySongs, fmt.Sprintf("Top %d Artists by Song Count", opts.TopArtists), top); err != nil {
		fail(FileTopBySongs, err)
	}

	if top := TopArtistsByAlbums(ds, opts.TopArtists); len(top) == 0 {
		r.logger.Warn("No artists in dataset, skipping top-by-albums chart")
	} else if err := r.Bar(FileTopByAlbums, fmt.Sprintf("Top %d Artists by Album Count", opts.TopArtists), top); err != nil {
		fail(FileTopByAlbums, err)
	}

	if years := SongsByYear(ds); len(years) == 0 {
		r.logger.Warn("No release years in dataset, skipping songs-by-year chart")
	} else {
		buckets := make([]LabelCount, len(years))
		for i, yc := range years {
			buckets[i] = LabelCount{Label: strconv.Itoa(yc.Year), Count: yc.Count}
		}
		if err := r.Bar(FileSongsByYear, "Songs by Release Year", buckets); err != nil {
			fail(FileSongsByYear, err)
		}
	}

	languages := LanguageCounts(ds, opts.MinLyricsLen, opts.Detect)
	if len(languages) == 0 {
		r.logger.Warn("No detectable languages in dataset, skipping language charts")
	} else {
		pie := TopWithOther(languages, opts.TopLanguagesPie, "Other Languages")
		if err := r.Pie(FileLanguagesPie, "Lyrics Languages", pie); err != nil {
			fail(FileLanguagesPie, err)
		}
		if err := r.LanguageTable(FileLanguageTable, TopN(languages, opts.TopLanguagesTable), Total(languages)); err != nil {
			fail(FileLanguageTable, err)
		}
	}

	r.renderContent(ds, opts, fail)

	r.logger.Info("Report rendered", zap.String("dir", r.outDir), zap.Int("failures", len(errs)))
	return errors.Join(errs...)
}

// renderContent draws the lyrics-content charts: the per-artist swear vs
// readability scatter, the two per-year trend lines, and the stupid-songs
// curve.
func (r *Renderer) renderContent(ds model.Dataset, opts Options, fail func(string, error)) {
	if len(opts.Swears) == 0 {
		r.logger.Warn("No swear word list configured, skipping content charts")
		return
	}
	songs := ContentSongs(ds, opts.MinLyricsLen, opts.Swears, opts.TopBands)
	if len(songs) == 0 {
		r.logger.Warn("No dated English songs with lyrics, skipping content charts")
		return
	}

	if artists := ContentByArtist(songs); len(artists) < 2 {
		r.logger.Warn("Too few artists for the swear/readability scatter, skipping")
	} else {
		xs := make([]float64, len(artists))
		ys := make([]float64, len(artists))
		for i, ac := range artists {
			xs[i] = ac.AvgReadability
			ys[i] = ac.AvgSwearRatio
		}
		if err := r.Scatter(FileSwearScatter, "Swear Words vs Coleman-Liau (artists)",
			"Coleman-Liau readability score", "Fraction of swear words in lyrics", xs, ys); err != nil {
			fail(FileSwearScatter, err)
		}
	}

	if years := ContentByYear(songs); len(years) < 2 {
		r.logger.Warn("Too few release years for the content trend lines, skipping")
	} else {
		xs := make([]float64, len(years))
		swear := make([]float64, len(years))
		read := make([]float64, len(years))
		for i, yc := range years {
			xs[i] = float64(yc.Year)
			swear[i] = yc.AvgSwearRatio
			read[i] = yc.AvgReadability
		}
		if err := r.Line(FileSwearByYear, "Average Swear Word Ratio by Release Year",
			"Release year", "Average swear word ratio", xs, swear); err != nil {
			fail(FileSwearByYear, err)
		}
		if err := r.Line(FileReadabilityByYear, "Average Coleman-Liau Score by Release Year",
			"Release year", "Average Coleman-Liau score", xs, read); err != nil {
			fail(FileReadabilityByYear, err)
		}
	}

	curve := StupidSongsCurve(songs)
	xs := make([]float64, len(curve))
	ys := make([]float64, len(curve))
	for i, cp := range curve {
		xs[i] = cp.Threshold
		ys[i] = cp.Percent
	}
	if err := r.Line(FileStupidSongs, "Stupid Songs Share by Swear Word Ratio",
		"Swear word ratio threshold", "Percent of stupid songs", xs, ys); err != nil {
		fail(FileStupidSongs, err)
	}
}

// Pie renders buckets as a pie chart with percentage labels.
func (r *Renderer) Pie(filename, title string, counts []LabelCount) error {
	total := Total(counts)
	if total == 0 {
		return fmt.Errorf("pie %q has no data", title)
	}
	values := make([]chart.Value, 0, len(counts))
	for _, lc := range counts {
		if lc.Count == 0 {
			continue
		}
		pct := float64(lc.Count) * 100 / float64(total)
		values = append(values, chart.Value{
			Value: float64(lc.Count),
			Label: fmt.Sprintf("%s (%.1f%%)", lc.Label, pct),
		})
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  800,
		Height: 600,
		Values: values,
	}
	return r.renderPNG(filename, func(f *os.File) error { return pie.Render(chart.PNG, f) })
}

// Bar renders buckets as a vertical bar chart.
func (r *Renderer) Bar(filename, title string, counts []LabelCount) error {
	if len(counts) == 0 {
		return fmt.Errorf("bar %q has no data", title)
	}
	bars := make([]chart.Value, len(counts))
	for i, lc := range counts {
		bars[i] = chart.Value{Value: float64(lc.Count), Label: lc.Label}
	}
	bar := chart.BarChart{
		Title:    title,
		Width:    1024,
		Height:   512,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
	return r.renderPNG(filename, func(f *os.File) error { return bar.Render(chart.PNG, f) })
}

// Line renders one x/y series as a line chart.
func (r *Renderer) Line(filename, title, xLabel, yLabel string, xs, ys []float64) error {
	if len(xs) < 2 || len(xs) != len(ys) {
		return fmt.Errorf("line %q needs two or more matched points", title)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 512,
		XAxis:  chart.XAxis{Name: xLabel},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
	return r.renderPNG(filename, func(f *os.File) error { return graph.Render(chart.PNG, f) })
}

// Scatter renders one x/y series as a dot plot.
func (r *Renderer) Scatter(filename, title, xLabel, yLabel string, xs, ys []float64) error {
	if len(xs) < 2 || len(xs) != len(ys) {
		return fmt.Errorf("scatter %q needs two or more matched points", title)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 800,
		XAxis:  chart.XAxis{Name: xLabel},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return r.renderPNG(filename, func(f *os.File) error { return graph.Render(chart.PNG, f) })
}

// LanguageTable writes a plain-text table of languages with counts and
// share of the full language denominator, and echoes it to stdout.
func (r *Renderer) LanguageTable(filename string, counts []LabelCount, total int) error {
	path := filepath.Join(r.outDir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writeLanguageTable(io.MultiWriter(f, os.Stdout), counts, total)
	return f.Close()
}

func writeLanguageTable(w io.Writer, counts []LabelCount, total int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Language", "Songs", "Share"})
	for i, lc := range counts {
		share := "0.0%"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", float64(lc.Count)*100/float64(total))
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			lc.Label,
			strconv.Itoa(lc.Count),
			share,
		})
	}
	table.Render()
}

func (r *Renderer) renderPNG(filename string, render func(*os.File) error) error {
	path := filepath.Join(r.outDir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("rendering %s: %w", filename, err)
	}
	return f.Close()
}
