package installment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence operations the overdue job needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Installment, error)

	// MarkOverdue transitions every eligible pending installment of the
	// agency to overdue in a single atomic statement and returns the ids of
	// the installments it updated. Eligible means: status pending, plan
	// active, not yet processed on localToday, and either due before
	// localToday or due on localToday with cutoffPassed true. The statement
	// also stamps last_processed_date = localToday, which makes a second
	// invocation within the same agency-local day update zero rows.
	MarkOverdue(ctx context.Context, agencyID uuid.UUID, localToday time.Time, cutoffPassed bool) ([]uuid.UUID, error)

	// ListDueSoon returns pending installments of active plans due strictly
	// after localToday and within the next withinDays days.
	ListDueSoon(ctx context.Context, agencyID uuid.UUID, localToday time.Time, withinDays int) ([]*Installment, error)
}
