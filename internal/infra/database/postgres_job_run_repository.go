package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"installment_job/internal/domain/jobrun"
)

// ErrRunAlreadyFinished is returned when Finish targets a run that is not in
// the running state; the ledger allows exactly one terminal update per run.
var ErrRunAlreadyFinished = fmt.Errorf("job run already finished")

type PostgresJobRunRepository struct {
	db *sql.DB
}

func NewPostgresJobRunRepository(db *sql.DB) *PostgresJobRunRepository {
	return &PostgresJobRunRepository{db: db}
}

func (r *PostgresJobRunRepository) Start(ctx context.Context, jobName string) (*jobrun.Run, error) {
	query := `INSERT INTO job_runs (job_name, started_at, status)
               VALUES ($1, NOW(), $2)
               RETURNING id, started_at, created_at`
	run := jobrun.Run{JobName: jobName, Status: jobrun.StatusRunning}
	err := r.db.QueryRowContext(ctx, query, jobName, jobrun.StatusRunning).
		Scan(&run.ID, &run.StartedAt, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error starting job run: %w", err)
	}
	return &run, nil
}

func (r *PostgresJobRunRepository) Finish(ctx context.Context, runID int64, status jobrun.Status, recordsUpdated int, metadata json.RawMessage, errMsg string) error {
	// The status guard in the WHERE clause enforces the single terminal
	// update: a second Finish matches no rows.
	query := `UPDATE job_runs
               SET completed_at = NOW(), status = $2, records_updated = $3,
                   metadata = $4, error_message = NULLIF($5, '')
               WHERE id = $1 AND status = $6
               RETURNING completed_at`
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query,
		runID, status, recordsUpdated, nullableJSON(metadata), errMsg, jobrun.StatusRunning,
	).Scan(&completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRunAlreadyFinished
		}
		return fmt.Errorf("error finishing job run %d: %w", runID, err)
	}
	return nil
}

func nullableJSON(m json.RawMessage) interface{} {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
