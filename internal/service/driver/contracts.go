package driver

import (
	"context"

	"service-booking/internal/domain"
)

type driverStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListDrivers(ctx context.Context, p domain.Page) ([]domain.User, int, error)
	ListEligibleDrivers(ctx context.Context, vehicleType string) ([]domain.User, error)
	UpsertDriverProfile(ctx context.Context, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error)
}
