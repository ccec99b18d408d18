package agency

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read access to agencies. The overdue job never mutates
// agency records; tenant admins own them.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Agency, error)
	ListActive(ctx context.Context) ([]*Agency, error)
}
