package database

import (
	"context"
	"database/sql"
	"fmt"

	"installment_job/internal/domain/notification"

	"github.com/google/uuid"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	query := `INSERT INTO notifications (id, agency_id, type, title, message, link, metadata)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.AgencyID, n.Type, n.Title, n.Message, n.Link, []byte(n.Metadata),
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// ExistsForInstallment checks for a prior notification of the given type
// referencing the installment. The containment operator lets the GIN index
// on metadata serve the lookup.
func (r *PostgresNotificationRepository) ExistsForInstallment(ctx context.Context, agencyID uuid.UUID, typ notification.Type, installmentID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(
                  SELECT 1 FROM notifications
                  WHERE agency_id = $1
                    AND type = $2
                    AND metadata @> jsonb_build_object('installment_id', $3::text)
               )`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, agencyID, typ, installmentID.String()).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("error checking notification existence: %w", err)
	}
	return exists, nil
}
