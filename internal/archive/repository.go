// Package archive persists estimation run summaries to Postgres. The archive
// is optional; the service runs fully in-memory without a database.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Run is one archived estimation run.
type Run struct {
	ID        string          `json:"id"`
	Endpoint  string          `json:"endpoint"`
	Degraded  bool            `json:"degraded"`
	Summary   json.RawMessage `json:"summary"`
	CreatedAt time.Time       `json:"created_at"`
}

// Repository handles run persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the archive table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("archive repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS estimation_runs (
	id UUID PRIMARY KEY,
	endpoint TEXT NOT NULL,
	degraded BOOLEAN NOT NULL DEFAULT FALSE,
	summary JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`)
	return err
}

// SaveRun archives one run summary.
func (r *Repository) SaveRun(ctx context.Context, endpoint string, degraded bool, summary any) (*Run, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("archive repo: nil db")
	}
	if endpoint == "" {
		return nil, errors.New("archive repo: empty endpoint")
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	run := &Run{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		Degraded:  degraded,
		Summary:   payload,
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO estimation_runs (id, endpoint, degraded, summary, created_at)
VALUES ($1,$2,$3,$4,$5)`,
		run.ID, run.Endpoint, run.Degraded, run.Summary, run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs for an endpoint, newest first.
func (r *Repository) ListRuns(ctx context.Context, endpoint string, limit int) ([]Run, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("archive repo: nil db")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, endpoint, degraded, summary, created_at
FROM estimation_runs
WHERE ($1 = '' OR endpoint = $1)
ORDER BY created_at DESC
LIMIT $2`, endpoint, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Endpoint, &run.Degraded, &run.Summary, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one archived run by id.
func (r *Repository) GetRun(ctx context.Context, id string) (*Run, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("archive repo: nil db")
	}
	if id == "" {
		return nil, errors.New("archive repo: empty id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, endpoint, degraded, summary, created_at
FROM estimation_runs
WHERE id = $1`, id)

	var run Run
	if err := row.Scan(&run.ID, &run.Endpoint, &run.Degraded, &run.Summary, &run.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
