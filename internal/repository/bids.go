package repository

import (
	"context"
	"fmt"

	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// upsertBid inserts the bid or updates amount and status of the existing one
// for the same (order_id, driver_id). xmax is zero only on a fresh insert.
func upsertBid(ctx context.Context, q querier, b *domain.Bid) (bool, error) {
	if b.Status == "" {
		b.Status = domain.BidPending
	}
	var (
		created bool
		status  string
	)
	err := q.QueryRow(ctx, `
		INSERT INTO bids (id, order_id, driver_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT bids_order_driver_key DO UPDATE SET
			amount     = EXCLUDED.amount,
			status     = EXCLUDED.status,
			updated_at = now()
		RETURNING id, status, created_at, updated_at, (xmax = 0)`,
		cuid.New(), b.OrderID, b.DriverID, b.Amount, string(b.Status),
	).Scan(&b.ID, &status, &b.CreatedAt, &b.UpdatedAt, &created)
	if err != nil {
		return false, writeErr("upsert bid", err)
	}
	b.Status = domain.BidStatus(status)
	return created, nil
}

func getBid(ctx context.Context, q querier, id, lockClause string) (*domain.Bid, error) {
	b, err := scanBid(q.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`+lockClause, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bid %q: %w", id, err)
	}
	return b, nil
}

func findBid(ctx context.Context, q querier, orderID, driverID, lockClause string) (*domain.Bid, error) {
	b, err := scanBid(q.QueryRow(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE order_id = $1 AND driver_id = $2`+lockClause,
		orderID, driverID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find bid of %q on %q: %w", driverID, orderID, err)
	}
	return b, nil
}

func updateBidStatus(ctx context.Context, q querier, id string, status domain.BidStatus) error {
	ct, err := q.Exec(ctx, `UPDATE bids SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update bid %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("bid %q not found", id)
	}
	return nil
}

func rejectPendingBids(ctx context.Context, q querier, orderID, exceptBidID string) ([]domain.Bid, error) {
	rows, err := q.Query(ctx, `
		UPDATE bids
		SET status = $3, updated_at = now()
		WHERE order_id = $1 AND id <> $2 AND status = $4
		RETURNING `+bidColumns,
		orderID, exceptBidID, string(domain.BidRejected), string(domain.BidPending))
	if err != nil {
		return nil, fmt.Errorf("reject pending bids of %q: %w", orderID, err)
	}
	out, err := collect(rows, scanBid)
	if err != nil {
		return nil, fmt.Errorf("reject pending bids of %q: %w", orderID, err)
	}
	return out, nil
}
