package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// DispatchRepo lists dispatches.
type DispatchRepo struct{ db *pgxpool.Pool }

// NewDispatchRepo creates a new DispatchRepo.
func NewDispatchRepo(db *pgxpool.Pool) *DispatchRepo { return &DispatchRepo{db: db} }

// List returns a page of dispatches, limited to driverID when set, and the total count.
func (r *DispatchRepo) List(ctx context.Context, driverID *string, p domain.Page) ([]domain.Dispatch, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM dispatches WHERE $1::text IS NULL OR driver_id = $1`, driverID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dispatches: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+dispatchColumns+` FROM dispatches
		WHERE $1::text IS NULL OR driver_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, driverID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list dispatches: %w", err)
	}
	out, err := collect(rows, scanDispatch)
	if err != nil {
		return nil, 0, fmt.Errorf("list dispatches: %w", err)
	}
	return out, total, nil
}

func insertDispatch(ctx context.Context, q querier, d *domain.Dispatch) error {
	if d.ID == "" {
		d.ID = cuid.New()
	}
	if d.Status == "" {
		d.Status = domain.DispatchAssigned
	}
	err := q.QueryRow(ctx, `
		INSERT INTO dispatches (id, order_id, driver_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		d.ID, d.OrderID, d.DriverID, string(d.Status),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return writeErr("insert dispatch", err)
	}
	return nil
}

func getDispatch(ctx context.Context, q querier, id, lockClause string) (*domain.Dispatch, error) {
	d, err := scanDispatch(q.QueryRow(ctx, `SELECT `+dispatchColumns+` FROM dispatches WHERE id = $1`+lockClause, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch %q: %w", id, err)
	}
	return d, nil
}

func updateDispatchStatus(ctx context.Context, q querier, id string, status domain.DispatchStatus) error {
	ct, err := q.Exec(ctx, `UPDATE dispatches SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update dispatch %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("dispatch %q not found", id)
	}
	return nil
}
