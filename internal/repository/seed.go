package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// Dataset is a full set of rows written by Seed. Ids left empty are generated.
type Dataset struct {
	Users        []domain.User
	Pricing      []domain.Pricing
	Orders       []domain.Order
	Dispatches   []domain.Dispatch
	Transactions []domain.Transaction
}

// Seed empties every table and writes ds in one transaction.
func Seed(ctx context.Context, pool *pgxpool.Pool, ds *Dataset) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`TRUNCATE inbox, transactions, dispatches, bids, orders, pricing, drivers, users CASCADE`); err != nil {
			return writeErr("truncate", err)
		}
		for i := range ds.Users {
			if err := seedUser(ctx, tx, &ds.Users[i]); err != nil {
				return err
			}
		}
		for i := range ds.Pricing {
			p := &ds.Pricing[i]
			if p.ID == "" {
				p.ID = cuid.New()
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO pricing (id, service_type, base_fare, per_km_rate, per_min_rate, is_active)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				p.ID, p.ServiceType, p.BaseFare, p.PerKmRate, p.PerMinRate, p.IsActive,
			); err != nil {
				return writeErr("seed pricing", err)
			}
		}
		for i := range ds.Orders {
			if err := insertOrder(ctx, tx, &ds.Orders[i]); err != nil {
				return err
			}
		}
		for i := range ds.Dispatches {
			if err := insertDispatch(ctx, tx, &ds.Dispatches[i]); err != nil {
				return err
			}
		}
		for i := range ds.Transactions {
			t := &ds.Transactions[i]
			if t.ID == "" {
				t.ID = cuid.New()
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO transactions (id, order_id, customer_id, amount, payment_method, status)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				t.ID, t.OrderID, t.CustomerID, t.Amount, string(t.PaymentMethod), string(t.Status),
			); err != nil {
				return writeErr("seed transaction", err)
			}
		}
		return nil
	})
}

func seedUser(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	if u.ID == "" {
		u.ID = cuid.New()
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role),
	); err != nil {
		return writeErr("seed user", err)
	}
	if u.Driver == nil {
		return nil
	}
	d := u.Driver
	d.UserID = u.ID
	if d.KYCStatus == "" {
		d.KYCStatus = domain.KYCPending
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO drivers (user_id, license, number_plate, vehicle_type, kyc_status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.UserID, d.License, d.NumberPlate, d.VehicleType, string(d.KYCStatus), d.IsActive,
	); err != nil {
		return writeErr("seed driver", err)
	}
	return nil
}
