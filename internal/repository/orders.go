package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// OrderRepo reads orders and their bids.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

// Get - returns order by its ID, or nil.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	return getOrder(ctx, r.db, id, "")
}

// List returns a page of orders matching f and the total count.
func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter, p domain.Page) ([]domain.Order, int, error) {
	where, args := orderWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	q := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, q, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	out, err := collect(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return out, total, nil
}

func orderWhere(f domain.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.CustomerID != nil {
		conds = append(conds, "customer_id = "+arg(*f.CustomerID))
	}
	if f.Status != nil {
		conds = append(conds, "status = "+arg(string(*f.Status)))
	}
	if f.Driver != nil {
		conds = append(conds, fmt.Sprintf("((status = %s AND vehicle_type = %s) OR driver_id = %s)",
			arg(string(domain.OrderPending)), arg(f.Driver.VehicleType), arg(f.Driver.DriverID)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListBids returns the bids placed on an order, newest first.
func (r *OrderRepo) ListBids(ctx context.Context, orderID string) ([]domain.Bid, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bidColumns+` FROM bids
		WHERE order_id = $1
		ORDER BY updated_at DESC, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list bids of %q: %w", orderID, err)
	}
	out, err := collect(rows, scanBid)
	if err != nil {
		return nil, fmt.Errorf("list bids of %q: %w", orderID, err)
	}
	return out, nil
}

func getOrder(ctx context.Context, q querier, id, lockClause string) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`+lockClause, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return o, nil
}

func insertOrder(ctx context.Context, q querier, o *domain.Order) error {
	if o.ID == "" {
		o.ID = cuid.New()
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	err := q.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, driver_id, price_id, vehicle_type, pick_up, drop_off,
			parcel_type, pieces, recipient_name, recipient_number, additional_info,
			base_charges, distance_charges, time_charges, additional_charges, total_estimated_fare,
			image, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at`,
		o.ID, o.CustomerID, o.DriverID, o.PriceID, o.VehicleType, o.PickUp, o.DropOff,
		o.Parcel.Type, o.Parcel.Pieces, o.Parcel.RecipientName, o.Parcel.RecipientNumber, o.Parcel.AdditionalInfo,
		o.Fare.BaseCharges, o.Fare.DistanceCharges, o.Fare.TimeCharges, o.Fare.AdditionalCharges, o.Fare.TotalEstimatedFare,
		o.Image, string(o.Status),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return writeErr("insert order", err)
	}
	return nil
}

func setOrder(ctx context.Context, q querier, orderID string, status domain.OrderStatus, driverID *string) error {
	ct, err := q.Exec(ctx, `
		UPDATE orders
		SET status = $2, driver_id = COALESCE($3, driver_id), updated_at = now()
		WHERE id = $1`, orderID, string(status), driverID)
	if err != nil {
		return writeErr(fmt.Sprintf("update order %q", orderID), err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %q not found", orderID)
	}
	return nil
}
