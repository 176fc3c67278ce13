package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
)

// TransactionRepo stores payment records.
type TransactionRepo struct{ db *pgxpool.Pool }

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(db *pgxpool.Pool) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, order_id, customer_id, amount, payment_method, status, created_at`

// Create records a payment for an existing order; the customer is taken from the order.
// Returns apperr.ErrNotFound for an unknown order and apperr.ErrConflict when the order is already paid for.
func (r *TransactionRepo) Create(ctx context.Context, in domain.NewTransaction) (*domain.Transaction, error) {
	var (
		t              domain.Transaction
		method, status string
	)
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (id, order_id, customer_id, amount, payment_method, status)
		SELECT $1::text, o.id, o.customer_id, $3::numeric, $4::text, $5::text FROM orders o WHERE o.id = $2
		RETURNING `+transactionColumns,
		cuid.New(), in.OrderID, in.Amount, string(in.PaymentMethod), string(in.Status),
	).Scan(&t.ID, &t.OrderID, &t.CustomerID, &t.Amount, &method, &status, &t.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("order %q: %w", in.OrderID, apperr.ErrNotFound)
		}
		return nil, writeErr("create transaction", err)
	}
	t.PaymentMethod = domain.PaymentMethod(method)
	t.Status = domain.PaymentStatus(status)
	return &t, nil
}

// List returns a page of transactions and the total count.
func (r *TransactionRepo) List(ctx context.Context, p domain.Page) ([]domain.Transaction, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM transactions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Transaction, 0, p.Limit)
	for rows.Next() {
		var (
			t              domain.Transaction
			method, status string
		)
		if err := rows.Scan(&t.ID, &t.OrderID, &t.CustomerID, &t.Amount, &method, &status, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.PaymentMethod = domain.PaymentMethod(method)
		t.Status = domain.PaymentStatus(status)
		out = append(out, t)
	}
	return out, total, rows.Err()
}
