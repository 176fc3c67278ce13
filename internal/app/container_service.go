package app

import (
	"time"

	"go.uber.org/dig"

	"service-booking/internal/config"
	"service-booking/internal/logx"
	"service-booking/internal/metrics"
	"service-booking/internal/repository"
	"service-booking/internal/service/auth"
	"service-booking/internal/service/bidding"
	"service-booking/internal/service/dispatch"
	"service-booking/internal/service/driver"
	"service-booking/internal/service/order"
	"service-booking/internal/service/payment"
	"service-booking/internal/service/pricing"
	"service-booking/internal/service/user"
	"service-booking/internal/storage/objectstore"
)

type serviceIn struct {
	dig.In

	Config       *config.Config
	Logger       logx.Logger
	Metrics      *metrics.Booking
	Timeout      operationTimeout
	Booking      *repository.BookingRepo
	Users        *repository.UserRepo
	Orders       *repository.OrderRepo
	Dispatches   *repository.DispatchRepo
	Transactions *repository.TransactionRepo
	Pricing      *repository.PricingRepo
	Images       *objectstore.S3Store
	Tokens       *auth.Tokens
}

type serviceOut struct {
	dig.Out

	Auth       *auth.Service
	Orders     *order.Service
	Bids       *bidding.Service
	Dispatches *dispatch.Service
	Drivers    *driver.Service
	Payments   *payment.Service
	Pricing    *pricing.Service
	Users      *user.Service
}

func newServices(in serviceIn) serviceOut {
	timeout := time.Duration(in.Timeout)
	return serviceOut{
		Auth: auth.NewService(in.Users, in.Tokens, timeout, logx.Component(in.Logger, "auth")),
		Orders: order.NewService(in.Booking, in.Orders, in.Users, in.Images, in.Metrics, order.Options{
			RequireAvailableDrivers: in.Config.Features.RequireAvailableDrivers,
			Timeout:                 timeout,
		}, logx.Component(in.Logger, "order")),
		Bids:       bidding.NewService(in.Booking, in.Metrics, timeout, logx.Component(in.Logger, "bidding")),
		Dispatches: dispatch.NewService(in.Booking, in.Dispatches, in.Metrics, timeout, logx.Component(in.Logger, "dispatch")),
		Drivers:    driver.NewService(in.Users, in.Booking, timeout, logx.Component(in.Logger, "driver")),
		Payments:   payment.NewService(in.Transactions, timeout, logx.Component(in.Logger, "payment")),
		Pricing:    pricing.NewService(in.Pricing, timeout, logx.Component(in.Logger, "pricing")),
		Users:      user.NewService(in.Users, in.Images, timeout, logx.Component(in.Logger, "user")),
	}
}

func registerService(container *dig.Container) error {
	return provideAll(container, newServices)
}
