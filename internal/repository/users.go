package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// UserRepo stores accounts and driver profiles.
type UserRepo struct{ db *pgxpool.Pool }

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

// Create inserts u, and a PENDING profile when u is a driver. License and
// vehicle type are taken from u.Driver when set.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = cuid.New()
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (id, name, email, phone, password_hash, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at`,
			u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role),
		).Scan(&u.CreatedAt)
		if err != nil {
			return writeErr("create user", err)
		}
		if u.Role != domain.RoleDriver {
			return nil
		}
		var (
			license *string
			vehicle string
		)
		if u.Driver != nil {
			license, vehicle = u.Driver.License, u.Driver.VehicleType
		}
		p, err := scanDriver(tx.QueryRow(ctx, `
			INSERT INTO drivers (user_id, license, vehicle_type) VALUES ($1, $2, $3)
			RETURNING `+driverColumns, u.ID, license, vehicle))
		if err != nil {
			return writeErr("create driver profile", err)
		}
		u.Driver = p
		return nil
	})
}

// GetByID - returns the user with its driver profile, or nil.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN drivers d ON d.user_id = u.id
		WHERE u.id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

// GetByIdentifier - returns the user whose email or phone equals identifier, or nil.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN drivers d ON d.user_id = u.id
		WHERE u.email = $1 OR u.phone = $1
		LIMIT 1`, identifier))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by identifier: %w", err)
	}
	return u, nil
}

// ListDrivers returns a page of drivers and the total count.
func (r *UserRepo) ListDrivers(ctx context.Context, p domain.Page) ([]domain.User, int, error) {
	role := domain.RoleDriver
	return r.ListUsers(ctx, &role, p)
}

// ListUsers returns a page of users, optionally of one role, and the total count.
func (r *UserRepo) ListUsers(ctx context.Context, role *domain.Role, p domain.Page) ([]domain.User, int, error) {
	var filter *string
	if role != nil {
		v := string(*role)
		filter = &v
	}
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM users WHERE $1::text IS NULL OR role = $1`, filter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN drivers d ON d.user_id = u.id
		WHERE $1::text IS NULL OR u.role = $1
		ORDER BY u.created_at DESC, u.id
		LIMIT $2 OFFSET $3`, filter, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	out, err := collect(rows, scanUser)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return out, total, nil
}

// UpdateProfile sets the non-nil self-service fields of a user and returns it,
// or nil when the user does not exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, name, address *string, image *domain.Image) (*domain.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET
			name    = COALESCE($2, name),
			address = COALESCE($3, address),
			image   = COALESCE($4, image)
		WHERE id = $1`, id, name, address, image)
	if err != nil {
		return nil, writeErr("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// ListEligibleDrivers returns approved, active drivers of vehicleType.
func (r *UserRepo) ListEligibleDrivers(ctx context.Context, vehicleType string) ([]domain.User, error) {
	return listEligibleDrivers(ctx, r.db, vehicleType)
}

func listEligibleDrivers(ctx context.Context, q querier, vehicleType string) ([]domain.User, error) {
	rows, err := q.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u JOIN drivers d ON d.user_id = u.id
		WHERE u.role = $1 AND d.vehicle_type = $2 AND d.kyc_status = $3 AND d.is_active
		ORDER BY u.id`,
		string(domain.RoleDriver), vehicleType, string(domain.KYCApproved))
	if err != nil {
		return nil, fmt.Errorf("list eligible drivers: %w", err)
	}
	out, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("list eligible drivers: %w", err)
	}
	return out, nil
}

// UpsertDriverProfile saves the submitted profile fields and puts the profile back to KYC review.
func (r *UserRepo) UpsertDriverProfile(ctx context.Context, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error) {
	p, err := scanDriver(r.db.QueryRow(ctx, `
		INSERT INTO drivers (user_id, license, number_plate, vehicle_type, kyc_status, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, ''), $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			license      = COALESCE(EXCLUDED.license, drivers.license),
			number_plate = COALESCE(EXCLUDED.number_plate, drivers.number_plate),
			vehicle_type = COALESCE($4, drivers.vehicle_type),
			kyc_status   = EXCLUDED.kyc_status,
			updated_at   = EXCLUDED.updated_at
		RETURNING `+driverColumns,
		upd.UserID, upd.License, upd.NumberPlate, upd.VehicleType, string(domain.KYCPending), time.Now().UTC()))
	if err != nil {
		return nil, writeErr("upsert driver profile", err)
	}
	return p, nil
}

func getDriverProfile(ctx context.Context, q querier, userID, lockClause string) (*domain.DriverProfile, error) {
	p, err := scanDriver(q.QueryRow(ctx, `
		SELECT `+driverColumns+` FROM drivers WHERE user_id = $1`+lockClause, userID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver profile %q: %w", userID, err)
	}
	return p, nil
}

func updateKYC(ctx context.Context, q querier, d domain.KYCDecision) (*domain.DriverProfile, error) {
	p, err := scanDriver(q.QueryRow(ctx, `
		UPDATE drivers
		SET kyc_status = $2, is_active = COALESCE($3, is_active), updated_at = now()
		WHERE user_id = $1
		RETURNING `+driverColumns, d.UserID, string(d.Status), d.IsActive))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update kyc %q: %w", d.UserID, err)
	}
	return p, nil
}
