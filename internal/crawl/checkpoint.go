package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/model"
)

// Checkpoint is the full partial-progress state of one quarter's crawl. It
// is an explicit value passed into and out of the crawl loop, never hidden
// package state, so resume logic is testable without disk or network.
type Checkpoint struct {
	RunID   string `json:"run_id"`
	Quarter int    `json:"quarter"`
	// Done marks artists whose songs are already in Dataset. Resuming
	// skips them, which is what makes re-runs idempotent.
	Done      map[string]bool `json:"completed_artists"`
	Dataset   model.Dataset   `json:"dataset"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCheckpoint returns an empty checkpoint for a quarter with a fresh run ID.
func NewCheckpoint(quarter int) Checkpoint {
	return Checkpoint{
		RunID:   uuid.NewString(),
		Quarter: quarter,
		Done:    make(map[string]bool),
	}
}

// Store persists checkpoints between crawl runs.
type Store interface {
	// Load returns the checkpoint for a quarter, found=false when none
	// exists. A corrupt checkpoint is an error; callers decide whether to
	// start over.
	Load(ctx context.Context, quarter int) (Checkpoint, bool, error)
	// Save overwrites the stored checkpoint for cp.Quarter.
	Save(ctx context.Context, cp Checkpoint) error
	// Clear removes the checkpoint for a quarter. Clearing a missing
	// checkpoint is not an error.
	Clear(ctx context.Context, quarter int) error
}

// FileStore keeps one progress<quarter>.json per quarter under a data
// directory. Saves are full overwrites via write-temp-then-rename, so an
// interrupted save never corrupts the previous valid checkpoint.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates the data directory if needed and returns a store.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(quarter int) string {
	return filepath.Join(s.dir, fmt.Sprintf("progress%d.json", quarter))
}

// Load reads the quarter's checkpoint file.
func (s *FileStore) Load(_ context.Context, quarter int) (Checkpoint, bool, error) {
	raw, err := os.ReadFile(s.path(quarter))
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("decode checkpoint %s: %w", s.path(quarter), err)
	}
	if cp.Done == nil {
		cp.Done = make(map[string]bool)
	}
	return cp, true, nil
}

// Save atomically overwrites the quarter's checkpoint file.
func (s *FileStore) Save(ctx context.Context, cp Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp.UpdatedAt = time.Now().UTC()
	payload, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := writeFileAtomic(s.path(cp.Quarter), payload); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	s.logger.Debug("Checkpoint saved",
		zap.Int("quarter", cp.Quarter),
		zap.Int("completed_artists", len(cp.Done)),
	)
	return nil
}

// Clear removes the quarter's checkpoint file.
func (s *FileStore) Clear(_ context.Context, quarter int) error {
	if err := os.Remove(s.path(quarter)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// WriteDataset writes the final dataset file for a run, atomically.
func WriteDataset(path string, ds model.Dataset) error {
	payload, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	if err := writeFileAtomic(path, payload); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it into place, so readers only ever see a complete file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
