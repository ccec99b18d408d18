package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"installment_job/internal/domain/installment"

	"github.com/google/uuid"
)

var ErrInstallmentNotFound = fmt.Errorf("installment not found")

type PostgresInstallmentRepository struct {
	db *sql.DB
}

func NewPostgresInstallmentRepository(db *sql.DB) *PostgresInstallmentRepository {
	return &PostgresInstallmentRepository{db: db}
}

func (r *PostgresInstallmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*installment.Installment, error) {
	query := `SELECT i.id, i.plan_id, p.agency_id, i.amount_cents, i.due_date, i.status,
                      i.last_processed_date, i.created_at, i.updated_at
               FROM installments i
               JOIN payment_plans p ON p.id = i.plan_id
               WHERE i.id = $1`
	inst := installment.Installment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inst.ID, &inst.PlanID, &inst.AgencyID, &inst.AmountCents, &inst.DueDate,
		&inst.Status, &inst.LastProcessedDate, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInstallmentNotFound
		}
		return nil, fmt.Errorf("error getting installment by ID: %w", err)
	}
	return &inst, nil
}

// MarkOverdue performs the whole pending -> overdue sweep for one agency as a
// single conditional UPDATE. The last_processed_date guard lives in the WHERE
// clause rather than a separate read, so concurrent invocations cannot
// double-process, and RETURNING ties the reported ids to exactly the rows the
// statement changed.
func (r *PostgresInstallmentRepository) MarkOverdue(ctx context.Context, agencyID uuid.UUID, localToday time.Time, cutoffPassed bool) ([]uuid.UUID, error) {
	query := `UPDATE installments AS i
               SET status = $4, last_processed_date = $2, updated_at = NOW()
               FROM payment_plans AS p
               WHERE p.id = i.plan_id
                 AND p.agency_id = $1
                 AND p.status = $5
                 AND i.status = $6
                 AND (i.last_processed_date IS NULL OR i.last_processed_date < $2)
                 AND (i.due_date < $2 OR (i.due_date = $2 AND $3))
               RETURNING i.id`
	rows, err := r.db.QueryContext(ctx, query,
		agencyID, localToday, cutoffPassed,
		installment.StatusOverdue, installment.PlanActive, installment.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("error marking installments overdue for agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning updated installment id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating updated installment ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresInstallmentRepository) ListDueSoon(ctx context.Context, agencyID uuid.UUID, localToday time.Time, withinDays int) ([]*installment.Installment, error) {
	query := `SELECT i.id, i.plan_id, p.agency_id, i.amount_cents, i.due_date, i.status,
                      i.last_processed_date, i.created_at, i.updated_at
               FROM installments i
               JOIN payment_plans p ON p.id = i.plan_id
               WHERE p.agency_id = $1
                 AND p.status = $4
                 AND i.status = $5
                 AND i.due_date > $2
                 AND i.due_date <= ($2::date + $3::int)
               ORDER BY i.due_date`
	rows, err := r.db.QueryContext(ctx, query,
		agencyID, localToday, withinDays,
		installment.PlanActive, installment.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying due-soon installments for agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	installments := make([]*installment.Installment, 0)
	for rows.Next() {
		inst := installment.Installment{}
		if err := rows.Scan(
			&inst.ID, &inst.PlanID, &inst.AgencyID, &inst.AmountCents, &inst.DueDate,
			&inst.Status, &inst.LastProcessedDate, &inst.CreatedAt, &inst.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning due-soon installment row: %w", err)
		}
		installments = append(installments, &inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due-soon installment rows: %w", err)
	}
	return installments, nil
}
