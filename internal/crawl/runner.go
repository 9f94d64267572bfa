package crawl

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/darklyrics"
	"github.com/darkstats/metallyrics/internal/lang"
	"github.com/darkstats/metallyrics/internal/model"
)

// Site is the subset of the darklyrics client the runner needs. The
// interface keeps the crawl loop testable with a fake site.
type Site interface {
	ArtistIndex(ctx context.Context) ([]darklyrics.ArtistRef, error)
	ArtistPage(ctx context.Context, ref darklyrics.ArtistRef) ([]darklyrics.AlbumRef, error)
	AlbumLyrics(ctx context.Context, lyricsURL string) (map[int]string, error)
}

// RunnerConfig holds the per-run parameters of a quarter crawl.
type RunnerConfig struct {
	Quarter int
	// Quarters is the total partition count, normally 4.
	Quarters int
	// User labels the output dataset file (complete_dataset_<user>.json).
	User    string
	DataDir string
	// CheckpointEvery is the number of completed artists between saves.
	CheckpointEvery int
}

// Progress is a read-only snapshot of a running crawl, served by the status
// endpoint.
type Progress struct {
	Quarter   int       `json:"quarter"`
	User      string    `json:"user,omitempty"`
	Completed int       `json:"completed_artists"`
	Total     int       `json:"total_artists"`
	Songs     int       `json:"songs_collected"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Runner executes one quarter's crawl: index, partition, one artist at a
// time, checkpoint after every batch. Strictly sequential; the only
// concurrency is the read lock protecting the progress snapshot.
type Runner struct {
	cfg    RunnerConfig
	site   Site
	store  Store
	detect lang.DetectFunc
	logger *zap.Logger

	mu       sync.RWMutex
	progress Progress
}

// NewRunner wires a runner. detect may be nil to skip language annotation.
func NewRunner(cfg RunnerConfig, site Site, store Store, detect lang.DetectFunc, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		site:   site,
		store:  store,
		detect: detect,
		logger: logger,
	}
}

// Snapshot returns the current progress of the crawl.
func (r *Runner) Snapshot() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.progress
}

// DatasetPath returns the final dataset file location for a user.
func DatasetPath(dataDir, user string) string {
	name := fmt.Sprintf("complete_dataset_%s.json", strings.ToLower(user))
	return filepath.Join(dataDir, name)
}

// Run crawls the assigned quarter, resuming from a stored checkpoint when
// one exists. On interruption the latest checkpoint stays behind; on
// completion the final dataset file is written and the checkpoint cleared.
// Re-running with an existing checkpoint produces the same dataset as an
// uninterrupted run: completed artists are never refetched, never duplicated.
func (r *Runner) Run(ctx context.Context) error {
	index, err := r.site.ArtistIndex(ctx)
	if err != nil {
		return fmt.Errorf("fetch artist index: %w", err)
	}
	refs, err := Partition(index, r.cfg.Quarter, r.cfg.Quarters)
	if err != nil {
		return err
	}
	r.logger.Info("Quarter assigned",
		zap.Int("quarter", r.cfg.Quarter),
		zap.Int("artists", len(refs)),
		zap.Int("index_total", len(index)),
	)

	cp, found, err := r.store.Load(ctx, r.cfg.Quarter)
	switch {
	case err != nil:
		// Unreadable progress means starting from the beginning of the
		// quarter, not aborting the run.
		r.logger.Warn("Checkpoint unreadable, starting fresh", zap.Error(err))
		cp = NewCheckpoint(r.cfg.Quarter)
	case !found:
		cp = NewCheckpoint(r.cfg.Quarter)
	default:
		r.logger.Info("Resuming from checkpoint",
			zap.String("run_id", cp.RunID),
			zap.Int("completed_artists", len(cp.Done)),
		)
	}

	r.updateProgress(refs, cp)

	sinceSave := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return r.suspend(cp, err)
		}
		if cp.Done[ref.Name] {
			continue
		}

		artist, err := r.crawlArtist(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return r.suspend(cp, ctx.Err())
			}
			// A broken artist page costs us that artist for this run
			// only; it stays unmarked and is retried on the next one.
			r.logger.Warn("Artist failed, skipping",
				zap.String("artist", ref.Name),
				zap.Error(err),
			)
			artistsSkipped.Inc()
			continue
		}

		cp.Dataset = append(cp.Dataset, artist)
		cp.Done[ref.Name] = true
		artistsCompleted.Inc()
		_, _, songs := model.Dataset{artist}.Counts()
		songsCollected.Add(float64(songs))
		r.updateProgress(refs, cp)
		r.logger.Info("Artist completed",
			zap.String("artist", artist.Name),
			zap.Int("albums", len(artist.Albums)),
			zap.Int("songs", songs),
		)

		sinceSave++
		if sinceSave >= r.cfg.CheckpointEvery {
			if err := r.store.Save(ctx, cp); err != nil {
				return fmt.Errorf("save checkpoint: %w", err)
			}
			checkpointSaves.Inc()
			sinceSave = 0
		}
	}

	if sinceSave > 0 {
		if err := r.store.Save(ctx, cp); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		checkpointSaves.Inc()
	}

	path := DatasetPath(r.cfg.DataDir, r.cfg.User)
	if err := WriteDataset(path, cp.Dataset); err != nil {
		return err
	}
	if err := r.store.Clear(ctx, r.cfg.Quarter); err != nil {
		// The dataset is already on disk; a stale checkpoint is only
		// noise on the next run.
		r.logger.Warn("Failed to clear checkpoint", zap.Error(err))
	}

	artists, albums, songs := cp.Dataset.Counts()
	r.logger.Info("Quarter complete",
		zap.String("dataset", path),
		zap.Int("artists", artists),
		zap.Int("albums", albums),
		zap.Int("songs", songs),
	)
	return nil
}

// suspend saves the checkpoint before surfacing an interruption so at most
// one in-progress artist's work is lost.
func (r *Runner) suspend(cp Checkpoint, cause error) error {
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.store.Save(saveCtx, cp); err != nil {
		r.logger.Error("Failed to save checkpoint on interrupt", zap.Error(err))
	} else {
		checkpointSaves.Inc()
		r.logger.Info("Checkpoint saved on interrupt",
			zap.Int("completed_artists", len(cp.Done)),
		)
	}
	return cause
}

func (r *Runner) crawlArtist(ctx context.Context, ref darklyrics.ArtistRef) (model.Artist, error) {
	albums, err := r.site.ArtistPage(ctx, ref)
	if err != nil {
		return model.Artist{}, err
	}

	artist := model.Artist{Name: ref.Name, URL: ref.URL}
	for _, ab := range albums {
		if err := ctx.Err(); err != nil {
			return model.Artist{}, err
		}

		var texts map[int]string
		if ab.LyricsURL != "" {
			texts, err = r.site.AlbumLyrics(ctx, ab.LyricsURL)
			if err != nil {
				if ctx.Err() != nil {
					return model.Artist{}, err
				}
				r.logger.Warn("Album failed, skipping",
					zap.String("artist", ref.Name),
					zap.String("album", ab.Title),
					zap.Error(err),
				)
				albumsSkipped.Inc()
				continue
			}
		}

		album := model.Album{
			Title:       ab.Title,
			Type:        ab.Type,
			ReleaseYear: ab.ReleaseYear,
		}
		for _, sr := range ab.Songs {
			song := model.Song{
				Title:   sr.Title,
				TrackNo: sr.TrackNo,
				Lyrics:  texts[sr.TrackNo],
			}
			if song.Lyrics != "" && r.detect != nil {
				if code, ok := r.detect(song.Lyrics); ok {
					song.Language = code
				}
			}
			album.Songs = append(album.Songs, song)
		}
		artist.Albums = append(artist.Albums, album)
	}
	return artist, nil
}

func (r *Runner) updateProgress(refs []darklyrics.ArtistRef, cp Checkpoint) {
	completed := 0
	for _, ref := range refs {
		if cp.Done[ref.Name] {
			completed++
		}
	}
	_, _, songs := cp.Dataset.Counts()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = Progress{
		Quarter:   r.cfg.Quarter,
		User:      r.cfg.User,
		Completed: completed,
		Total:     len(refs),
		Songs:     songs,
		UpdatedAt: time.Now().UTC(),
	}
}
