package user

import (
	"context"

	"service-booking/internal/domain"
)

type userStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, role *domain.Role, p domain.Page) ([]domain.User, int, error)
	UpdateProfile(ctx context.Context, id string, name, address *string, image *domain.Image) (*domain.User, error)
}

type imageStore interface {
	Upload(ctx context.Context, folder string, f domain.Upload) (domain.Image, error)
	Delete(ctx context.Context, id string) error
}
