package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// PricingRepo stores fare models.
type PricingRepo struct{ db *pgxpool.Pool }

// NewPricingRepo creates a new PricingRepo.
func NewPricingRepo(db *pgxpool.Pool) *PricingRepo { return &PricingRepo{db: db} }

const pricingColumns = `id, service_type, base_fare, per_km_rate, per_min_rate, is_active, created_at`

func scanPricing(row pgx.Row) (*domain.Pricing, error) {
	var p domain.Pricing
	if err := row.Scan(&p.ID, &p.ServiceType, &p.BaseFare, &p.PerKmRate, &p.PerMinRate, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get - returns pricing by its ID, or nil.
func (r *PricingRepo) Get(ctx context.Context, id string) (*domain.Pricing, error) {
	p, err := scanPricing(r.db.QueryRow(ctx, `SELECT `+pricingColumns+` FROM pricing WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pricing %q: %w", id, err)
	}
	return p, nil
}

// List returns all pricing models, optionally only active ones.
func (r *PricingRepo) List(ctx context.Context, activeOnly bool) ([]domain.Pricing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pricingColumns+` FROM pricing
		WHERE NOT $1 OR is_active
		ORDER BY service_type`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list pricing: %w", err)
	}
	out, err := collect(rows, scanPricing)
	if err != nil {
		return nil, fmt.Errorf("list pricing: %w", err)
	}
	return out, nil
}

// Create inserts p; a duplicate service type is apperr.ErrConflict.
func (r *PricingRepo) Create(ctx context.Context, p *domain.Pricing) error {
	if p.ID == "" {
		p.ID = cuid.New()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO pricing (id, service_type, base_fare, per_km_rate, per_min_rate, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		p.ID, p.ServiceType, p.BaseFare, p.PerKmRate, p.PerMinRate, p.IsActive,
	).Scan(&p.CreatedAt)
	if err != nil {
		return writeErr("create pricing", err)
	}
	return nil
}
