package jobrun

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Status is the lifecycle state of one job execution. A run is created as
// running and receives exactly one terminal update; no run is ever reopened.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Run is one execution record of a scheduled job, used for observability
// and alerting. Metadata holds the per-agency breakdown and the best-effort
// notification/email sub-counts and errors.
type Run struct {
	ID             int64
	JobName        string
	StartedAt      time.Time
	CompletedAt    sql.NullTime
	Status         Status
	RecordsUpdated int
	ErrorMessage   sql.NullString
	Metadata       json.RawMessage
	CreatedAt      time.Time
}
