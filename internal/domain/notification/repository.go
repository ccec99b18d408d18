package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for in-app notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error

	// ExistsForInstallment reports whether a notification of the given type
	// already references the installment, via a containment lookup on the
	// stored metadata.
	ExistsForInstallment(ctx context.Context, agencyID uuid.UUID, typ Type, installmentID uuid.UUID) (bool, error)
}
