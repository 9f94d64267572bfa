package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/darklyrics"
	"github.com/darkstats/metallyrics/internal/model"
)

// fakeSite serves a fixed artist/album/song fixture from memory.
type fakeSite struct {
	index       []darklyrics.ArtistRef
	pages       map[string][]darklyrics.AlbumRef // by artist URL
	lyrics      map[string]map[int]string        // by lyrics URL
	failArtists map[string]bool                  // artist name -> fetch fails
	onArtist    func(name string)
}

func (f *fakeSite) ArtistIndex(context.Context) ([]darklyrics.ArtistRef, error) {
	return f.index, nil
}

func (f *fakeSite) ArtistPage(_ context.Context, ref darklyrics.ArtistRef) ([]darklyrics.AlbumRef, error) {
	if f.onArtist != nil {
		f.onArtist(ref.Name)
	}
	if f.failArtists[ref.Name] {
		return nil, errors.New("boom")
	}
	page, ok := f.pages[ref.URL]
	if !ok {
		return nil, fmt.Errorf("no such artist page %s", ref.URL)
	}
	return page, nil
}

func (f *fakeSite) AlbumLyrics(_ context.Context, lyricsURL string) (map[int]string, error) {
	texts, ok := f.lyrics[lyricsURL]
	if !ok {
		return nil, fmt.Errorf("no such lyrics page %s", lyricsURL)
	}
	return texts, nil
}

// memStore is an in-memory checkpoint store for resume tests.
type memStore struct {
	cps map[int]Checkpoint
}

func newMemStore() *memStore {
	return &memStore{cps: make(map[int]Checkpoint)}
}

func (m *memStore) Load(_ context.Context, quarter int) (Checkpoint, bool, error) {
	cp, ok := m.cps[quarter]
	return cp, ok, nil
}

func (m *memStore) Save(_ context.Context, cp Checkpoint) error {
	m.cps[cp.Quarter] = cp
	return nil
}

func (m *memStore) Clear(_ context.Context, quarter int) error {
	delete(m.cps, quarter)
	return nil
}

// fixtureSite has 4 artists so a 4-way partition puts exactly one artist in
// each quarter; tests that need several artists in one quarter partition
// with Quarters=1.
func fixtureSite() *fakeSite {
	site := &fakeSite{
		pages:       make(map[string][]darklyrics.AlbumRef),
		lyrics:      make(map[string]map[int]string),
		failArtists: make(map[string]bool),
	}
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("Band %d", i)
		artistURL := fmt.Sprintf("https://site/b/band%d.html", i)
		lyricsURL := fmt.Sprintf("https://site/lyrics/band%d/debut.html", i)
		site.index = append(site.index, darklyrics.ArtistRef{Name: name, URL: artistURL})
		site.pages[artistURL] = []darklyrics.AlbumRef{{
			Title:       "Debut",
			Type:        "album",
			ReleaseYear: 1990 + i,
			LyricsURL:   lyricsURL,
			Songs: []darklyrics.SongRef{
				{Title: "Opener", TrackNo: 1},
				{Title: "Closer", TrackNo: 2},
			},
		}}
		site.lyrics[lyricsURL] = map[int]string{
			1: "words of the opener song here",
			2: "", // instrumental
		}
	}
	return site
}

func runnerFor(site Site, store Store, dataDir, user string, quarter, quarters int) *Runner {
	return NewRunner(RunnerConfig{
		Quarter:         quarter,
		Quarters:        quarters,
		User:            user,
		DataDir:         dataDir,
		CheckpointEvery: 1,
	}, site, store, nil, zap.NewNop())
}

func readDataset(t *testing.T, path string) model.Dataset {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var ds model.Dataset
	require.NoError(t, json.Unmarshal(raw, &ds))
	return ds
}

func TestRunProducesExactFixtureCounts(t *testing.T) {
	t.Parallel()

	site := fixtureSite()
	store := newMemStore()
	dir := t.TempDir()

	runner := runnerFor(site, store, dir, "tester", 1, 1)
	require.NoError(t, runner.Run(context.Background()))

	ds := readDataset(t, DatasetPath(dir, "tester"))
	artists, albums, songs := ds.Counts()
	assert.Equal(t, 4, artists)
	assert.Equal(t, 4, albums)
	assert.Equal(t, 8, songs)

	// Completion discards the checkpoint.
	_, found, err := store.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunQuarterCrawlsOnlyItsSlice(t *testing.T) {
	t.Parallel()

	site := fixtureSite()
	store := newMemStore()
	dir := t.TempDir()

	runner := runnerFor(site, store, dir, "florent", 2, 4)
	require.NoError(t, runner.Run(context.Background()))

	ds := readDataset(t, DatasetPath(dir, "florent"))
	require.Len(t, ds, 1)
	assert.Equal(t, "Band 1", ds[0].Name)
}

func TestRunSkipsFailingArtistWithoutAborting(t *testing.T) {
	t.Parallel()

	site := fixtureSite()
	site.failArtists["Band 2"] = true
	store := newMemStore()
	dir := t.TempDir()

	runner := runnerFor(site, store, dir, "tester", 1, 1)
	require.NoError(t, runner.Run(context.Background()))

	ds := readDataset(t, DatasetPath(dir, "tester"))
	names := make(map[string]bool)
	for _, a := range ds {
		names[a.Name] = true
	}
	assert.Len(t, ds, 3)
	assert.False(t, names["Band 2"])
}

func TestRunResumeAfterInterruptHasNoDuplicates(t *testing.T) {
	t.Parallel()

	site := fixtureSite()
	store := newMemStore()
	dir := t.TempDir()

	// Interrupt the first run after two artists have completed.
	ctx, cancel := context.WithCancel(context.Background())
	crawled := 0
	site.onArtist = func(string) {
		crawled++
		if crawled > 2 {
			cancel()
		}
	}
	first := runnerFor(site, store, dir, "tester", 1, 1)
	err := first.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The interruption left a checkpoint behind.
	cp, found, loadErr := store.Load(context.Background(), 1)
	require.NoError(t, loadErr)
	require.True(t, found)
	assert.Len(t, cp.Done, 2)

	// Resume with a fresh context; artists already done are not refetched.
	fetchedAgain := make(map[string]int)
	site.onArtist = func(name string) { fetchedAgain[name]++ }

	second := runnerFor(site, store, dir, "tester", 1, 1)
	require.NoError(t, second.Run(context.Background()))

	ds := readDataset(t, DatasetPath(dir, "tester"))
	artists, _, songs := ds.Counts()
	assert.Equal(t, 4, artists)
	assert.Equal(t, 8, songs)

	// Every artist appears exactly once.
	seen := make(map[string]int)
	for _, a := range ds {
		seen[a.Name]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "artist %s duplicated", name)
	}
	for name := range cp.Done {
		assert.Zero(t, fetchedAgain[name], "artist %s was refetched on resume", name)
	}
}

func TestRunAnnotatesLanguage(t *testing.T) {
	t.Parallel()

	site := fixtureSite()
	store := newMemStore()
	dir := t.TempDir()

	detect := func(text string) (string, bool) { return "en", true }
	runner := NewRunner(RunnerConfig{
		Quarter:         1,
		Quarters:        1,
		User:            "tester",
		DataDir:         dir,
		CheckpointEvery: 1,
	}, site, store, detect, zap.NewNop())
	require.NoError(t, runner.Run(context.Background()))

	ds := readDataset(t, DatasetPath(dir, "tester"))
	for _, a := range ds {
		for _, al := range a.Albums {
			for _, s := range al.Songs {
				if s.Lyrics != "" {
					assert.Equal(t, "en", s.Language)
				} else {
					assert.Empty(t, s.Language)
				}
			}
		}
	}
}

func TestSnapshotTracksProgress(t *testing.T) {
	t.Parallel()

	site := fixtureSite()
	store := newMemStore()
	dir := t.TempDir()

	runner := runnerFor(site, store, dir, "tester", 1, 1)
	require.NoError(t, runner.Run(context.Background()))

	progress := runner.Snapshot()
	assert.Equal(t, 1, progress.Quarter)
	assert.Equal(t, 4, progress.Completed)
	assert.Equal(t, 4, progress.Total)
	assert.Equal(t, 8, progress.Songs)
}
