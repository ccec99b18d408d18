package jobrun

import (
	"context"
	"encoding/json"
)

// Repository defines the run ledger. Start must succeed before the job does
// any work; if it fails the job aborts so no processing happens without an
// audit trail.
type Repository interface {
	// Start inserts a new running record and returns it with ID populated.
	Start(ctx context.Context, jobName string) (*Run, error)

	// Finish performs the single terminal update for a run. Implementations
	// must reject a second terminal update for the same run.
	Finish(ctx context.Context, runID int64, status Status, recordsUpdated int, metadata json.RawMessage, errMsg string) error
}
