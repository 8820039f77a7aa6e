// Package history persists one summary row per sync run in PostgreSQL.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
)

// DefaultLimit is the number of runs returned when no limit is given.
const DefaultLimit = 20

// MaxLimit caps the number of runs returned by Recent.
const MaxLimit = 500

// ErrStore wraps every database failure of the history store.
var ErrStore = errors.New("history store")

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Run is a stored summary of one sync run.
type Run struct {
	ID        string          `json:"id"`
	FileName  string          `json:"fileName"`
	Format    core.Format     `json:"format"`
	Mode      core.Mode       `json:"mode"`
	DryRun    bool            `json:"dryRun"`
	State     core.RunState   `json:"state"`
	TeamName  string          `json:"teamName,omitempty"`
	Stats     core.RunStats   `json:"stats"`
	Errors    []core.RunError `json:"errors"`
	StartedAt time.Time       `json:"startedAt"`
	Duration  time.Duration   `json:"duration"`
}

// Store reads and writes run summaries.
type Store struct {
	db DBTX
}

// New returns a Store backed by db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Connect opens a connection pool for cfg and verifies it with a ping.
// The caller closes the pool.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database URL: %v", ErrStore, err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrStore, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrStore, err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Debug("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	return pool, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL DEFAULT '',
	format      TEXT NOT NULL,
	mode        TEXT NOT NULL,
	dry_run     BOOLEAN NOT NULL DEFAULT FALSE,
	state       TEXT NOT NULL,
	team_name   TEXT NOT NULL DEFAULT '',
	stats       JSONB NOT NULL,
	errors      JSONB NOT NULL DEFAULT '[]',
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS sync_runs_started_at_idx ON sync_runs (started_at DESC);
`

// EnsureSchema creates the sync_runs table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: ensure schema: %w", ErrStore, err)
	}
	return nil
}

const insertRunSQL = `
INSERT INTO sync_runs (id, file_name, format, mode, dry_run, state, team_name, stats, errors, started_at, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

// Record stores the summary of res. The tracker API key is never part of it.
func (s *Store) Record(ctx context.Context, res *core.RunResult, fileName string, format core.Format) error {
	if res == nil {
		return fmt.Errorf("%w: nil run result", ErrStore)
	}

	stats, err := json.Marshal(res.Stats)
	if err != nil {
		return fmt.Errorf("%w: encode stats: %w", ErrStore, err)
	}
	runErrors := res.Errors
	if runErrors == nil {
		runErrors = []core.RunError{}
	}
	errs, err := json.Marshal(runErrors)
	if err != nil {
		return fmt.Errorf("%w: encode errors: %w", ErrStore, err)
	}

	_, err = s.db.Exec(ctx, insertRunSQL,
		res.RunID,
		fileName,
		string(format),
		string(res.Mode),
		res.DryRun,
		string(res.State),
		res.TeamName,
		stats,
		errs,
		res.StartedAt,
		res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert run %s: %w", ErrStore, res.RunID, err)
	}
	return nil
}

const recentRunsSQL = `
SELECT id, file_name, format, mode, dry_run, state, team_name, stats, errors, started_at, duration_ms
FROM sync_runs
ORDER BY started_at DESC
LIMIT $1`

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.Query(ctx, recentRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query runs: %w", ErrStore, err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run              Run
			format, mode, st string
			stats, errs      []byte
			durationMS       int64
		)
		if err := rows.Scan(&run.ID, &run.FileName, &format, &mode, &run.DryRun, &st,
			&run.TeamName, &stats, &errs, &run.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("%w: scan run: %w", ErrStore, err)
		}
		run.Format = core.Format(format)
		run.Mode = core.Mode(mode)
		run.State = core.RunState(st)
		run.Duration = time.Duration(durationMS) * time.Millisecond

		if err := json.Unmarshal(stats, &run.Stats); err != nil {
			return nil, fmt.Errorf("%w: decode stats of run %s: %w", ErrStore, run.ID, err)
		}
		if len(errs) > 0 {
			if err := json.Unmarshal(errs, &run.Errors); err != nil {
				return nil, fmt.Errorf("%w: decode errors of run %s: %w", ErrStore, run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read runs: %w", ErrStore, err)
	}

	return runs, nil
}
