package database

import (
	"context"
	"database/sql"
	"fmt"

	"installment_job/internal/domain/agency"

	"github.com/google/uuid"
)

var ErrAgencyNotFound = fmt.Errorf("agency not found")

type PostgresAgencyRepository struct {
	db *sql.DB
}

func NewPostgresAgencyRepository(db *sql.DB) *PostgresAgencyRepository {
	return &PostgresAgencyRepository{db: db}
}

const agencyColumns = `id, name, timezone, overdue_cutoff, due_soon_days, is_active, created_at, updated_at`

func (r *PostgresAgencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*agency.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1`
	a := agency.Agency{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Timezone, &a.OverdueCutoff, &a.DueSoonDays,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAgencyNotFound
		}
		return nil, fmt.Errorf("error getting agency by ID: %w", err)
	}
	return &a, nil
}

func (r *PostgresAgencyRepository) ListActive(ctx context.Context) ([]*agency.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE is_active = TRUE ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active agencies: %w", err)
	}
	defer rows.Close()

	agencies := make([]*agency.Agency, 0)
	for rows.Next() {
		a := agency.Agency{}
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Timezone, &a.OverdueCutoff, &a.DueSoonDays,
			&a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning agency row: %w", err)
		}
		agencies = append(agencies, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agency rows: %w", err)
	}
	return agencies, nil
}
