package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PGStoreConfig controls the Postgres connection pool used for checkpoints.
type PGStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PGStore keeps one checkpoint row per quarter in Postgres. It exists for
// crawls run from machines without durable local disk; the payload column is
// the same JSON document the FileStore writes.
//
// Expected schema:
//
//	CREATE TABLE crawl_progress (
//	    quarter     INT PRIMARY KEY,
//	    run_id      UUID NOT NULL,
//	    payload     JSONB NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL
//	);
type PGStore struct {
	pool  pgPool
	table string
}

// NewPGStore connects a pool and returns a Postgres-backed Store.
func NewPGStore(ctx context.Context, cfg PGStoreConfig) (*PGStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("checkpoint.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPGStoreWithPool(pool, cfg.Table)
}

// NewPGStoreWithPool constructs a store from an existing pool (primarily for
// testing).
func NewPGStoreWithPool(pool pgPool, table string) (*PGStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "crawl_progress"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PGStore{pool: pool, table: table}, nil
}

// Close closes the underlying connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// Load reads the quarter's checkpoint row.
func (s *PGStore) Load(ctx context.Context, quarter int) (Checkpoint, bool, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE quarter = $1;`, s.table)
	var payload []byte
	err := s.pool.QueryRow(ctx, query, quarter).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("decode checkpoint payload: %w", err)
	}
	if cp.Done == nil {
		cp.Done = make(map[string]bool)
	}
	return cp, true, nil
}

// Save upserts the quarter's checkpoint row.
func (s *PGStore) Save(ctx context.Context, cp Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (quarter, run_id, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (quarter) DO UPDATE
		SET run_id = EXCLUDED.run_id,
		    payload = EXCLUDED.payload,
		    updated_at = EXCLUDED.updated_at;
	`, s.table)
	if _, err := s.pool.Exec(ctx, query, cp.Quarter, cp.RunID, payload, cp.UpdatedAt); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Clear deletes the quarter's checkpoint row.
func (s *PGStore) Clear(ctx context.Context, quarter int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE quarter = $1;`, s.table)
	if _, err := s.pool.Exec(ctx, query, quarter); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}
