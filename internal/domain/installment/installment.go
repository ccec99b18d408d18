package installment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a single installment. The overdue job
// only ever performs the pending -> overdue transition; paid and cancelled
// are absorbing states it never touches.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// PlanStatus is the lifecycle state of a payment plan. Only installments of
// an active plan are eligible for automatic transition.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCancelled PlanStatus = "cancelled"
	PlanCompleted PlanStatus = "completed"
)

// Installment is a single scheduled payment obligation. DueDate carries
// calendar-date semantics in the owning agency's timezone.
type Installment struct {
	ID       uuid.UUID
	PlanID   uuid.UUID
	AgencyID uuid.UUID

	AmountCents int64
	DueDate     time.Time
	Status      Status

	// LastProcessedDate guards against the job re-evaluating (and
	// re-notifying for) the same installment more than once per calendar
	// day. It is set to the agency-local "today" when the job marks the
	// installment overdue.
	LastProcessedDate sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Plan groups installments under one agency and student.
type Plan struct {
	ID          uuid.UUID
	AgencyID    uuid.UUID
	StudentName string
	Status      PlanStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
