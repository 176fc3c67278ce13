package repository

import (
	"time"

	"github.com/jackc/pgx/v5"

	"service-booking/internal/domain"
)

const userColumns = `u.id, u.name, u.email, u.phone, u.address, u.image, u.password_hash, u.role, u.created_at,
	d.user_id, d.license, d.number_plate, d.vehicle_type, d.kyc_status, d.is_active, d.documents, d.updated_at`

const driverColumns = `user_id, license, number_plate, vehicle_type, kyc_status, is_active, documents, updated_at`

const orderColumns = `id, customer_id, driver_id, price_id, vehicle_type, pick_up, drop_off,
	parcel_type, pieces, recipient_name, recipient_number, additional_info,
	base_charges, distance_charges, time_charges, additional_charges, total_estimated_fare,
	image, status, created_at, updated_at`

const bidColumns = `id, order_id, driver_id, amount, status, created_at, updated_at`

const dispatchColumns = `id, order_id, driver_id, status, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		dUserID   *string
		license   *string
		plate     *string
		vehicle   *string
		kyc       *string
		active    *bool
		docs      map[string]domain.Image
		dUpdateAt *time.Time
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.Image, &u.PasswordHash, &role, &u.CreatedAt,
		&dUserID, &license, &plate, &vehicle, &kyc, &active, &docs, &dUpdateAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if dUserID != nil {
		p := &domain.DriverProfile{
			UserID:      *dUserID,
			License:     license,
			NumberPlate: plate,
			Documents:   docs,
		}
		if vehicle != nil {
			p.VehicleType = *vehicle
		}
		if kyc != nil {
			p.KYCStatus = domain.KYCStatus(*kyc)
		}
		if active != nil {
			p.IsActive = *active
		}
		if dUpdateAt != nil {
			p.UpdatedAt = *dUpdateAt
		}
		u.Driver = p
	}
	return &u, nil
}

func scanDriver(row pgx.Row) (*domain.DriverProfile, error) {
	var (
		p   domain.DriverProfile
		kyc string
	)
	err := row.Scan(&p.UserID, &p.License, &p.NumberPlate, &p.VehicleType, &kyc, &p.IsActive, &p.Documents, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.KYCStatus = domain.KYCStatus(kyc)
	return &p, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.DriverID, &o.PriceID, &o.VehicleType, &o.PickUp, &o.DropOff,
		&o.Parcel.Type, &o.Parcel.Pieces, &o.Parcel.RecipientName, &o.Parcel.RecipientNumber, &o.Parcel.AdditionalInfo,
		&o.Fare.BaseCharges, &o.Fare.DistanceCharges, &o.Fare.TimeCharges, &o.Fare.AdditionalCharges, &o.Fare.TotalEstimatedFare,
		&o.Image, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func scanBid(row pgx.Row) (*domain.Bid, error) {
	var (
		b      domain.Bid
		status string
	)
	if err := row.Scan(&b.ID, &b.OrderID, &b.DriverID, &b.Amount, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BidStatus(status)
	return &b, nil
}

func scanDispatch(row pgx.Row) (*domain.Dispatch, error) {
	var (
		d      domain.Dispatch
		status string
	)
	if err := row.Scan(&d.ID, &d.OrderID, &d.DriverID, &status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Status = domain.DispatchStatus(status)
	return &d, nil
}

// collect scans every row with scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
