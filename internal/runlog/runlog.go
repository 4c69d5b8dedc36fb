// Package runlog optionally persists per-scene run bookkeeping (start,
// finish, status) to Postgres. It is pure observability: the deterministic
// simulation never reads from it.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/vtrace/internal/runlog/migrations"
)

// Store wraps a pgx connection pool used to record scene-run status.
type Store struct {
	pool *pgxpool.Pool
}

var gooseOnce sync.Once

// Open connects to dsn, applies the scene_runs migration, and returns a
// Store. Callers should Close it when the batch run finishes.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("runlog: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("runlog: pinging: %w", err)
	}

	if err := migrate(ctx, dsn); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

func migrate(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("runlog: opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	var dialectErr error
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		dialectErr = goose.SetDialect("postgres")
	})
	if dialectErr != nil {
		return fmt.Errorf("runlog: setting goose dialect: %w", dialectErr)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("runlog: running migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// RecordStart inserts a "running" row for one scene within runID.
func (s *Store) RecordStart(ctx context.Context, runID uuid.UUID, sceneNumber int, scenePath string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scene_runs (run_id, scene_number, scene_path, started_at, status)
		 VALUES ($1, $2, $3, $4, 'running')`,
		runID, sceneNumber, scenePath, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("runlog: recording start for scene %d: %w", sceneNumber, err)
	}
	return nil
}

// RecordFinish updates a scene's row with its terminal status. runErr may be
// nil (status "ok") or non-nil (status "failed", message stored in error).
func (s *Store) RecordFinish(ctx context.Context, runID uuid.UUID, sceneNumber int, runErr error) error {
	status := "ok"
	var errMsg *string
	if runErr != nil {
		status = "failed"
		msg := runErr.Error()
		errMsg = &msg
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE scene_runs SET finished_at = $1, status = $2, error = $3
		 WHERE run_id = $4 AND scene_number = $5`,
		time.Now(), status, errMsg, runID, sceneNumber,
	)
	if err != nil {
		return fmt.Errorf("runlog: recording finish for scene %d: %w", sceneNumber, err)
	}
	return nil
}
