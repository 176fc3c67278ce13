package dispatch

import (
	"context"

	"service-booking/internal/domain"
)

type dispatchLister interface {
	List(ctx context.Context, driverID *string, p domain.Page) ([]domain.Dispatch, int, error)
}
