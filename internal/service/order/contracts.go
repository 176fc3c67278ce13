//go:generate mockgen -source=contracts.go -destination=order_mocks_test.go -package=order_test

package order

import (
	"context"

	"service-booking/internal/domain"
)

type imageStore interface {
	Upload(ctx context.Context, folder string, f domain.Upload) (domain.Image, error)
	Delete(ctx context.Context, id string) error
}

type orderReader interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter, p domain.Page) ([]domain.Order, int, error)
	ListBids(ctx context.Context, orderID string) ([]domain.Bid, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
