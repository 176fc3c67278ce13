package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"service-booking/internal/config"
	"service-booking/internal/http/handlers"
	"service-booking/internal/http/middleware"
	"service-booking/internal/http/middleware/ratelimit"
	"service-booking/internal/http/pprofserver"
	"service-booking/internal/http/router"
	"service-booking/internal/logx"
	"service-booking/internal/repository"
	"service-booking/internal/service/auth"
	"service-booking/internal/service/bidding"
	"service-booking/internal/service/dispatch"
	"service-booking/internal/service/driver"
	"service-booking/internal/service/order"
	"service-booking/internal/service/payment"
	"service-booking/internal/service/pricing"
	"service-booking/internal/service/user"
)

const pprofServerName = "pprof_server"

type handlersIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Pool       *pgxpool.Pool
	Auth       *auth.Service
	Orders     *order.Service
	Bids       *bidding.Service
	Dispatches *dispatch.Service
	Drivers    *driver.Service
	Payments   *payment.Service
	Pricing    *pricing.Service
	Users      *user.Service
}

func newRouterHandlers(in handlersIn) router.Handlers {
	rs := handlers.NewResponder(in.Logger, in.Config.Features.LegacyBidErrors)
	return router.Handlers{
		Base:         handlers.New(in.Logger, in.Pool),
		Auth:         handlers.NewAuthHandler(rs, in.Auth, in.Config.Auth.SecureCookie),
		Orders:       handlers.NewOrderHandler(rs, in.Orders),
		Bids:         handlers.NewBidHandler(rs, in.Bids),
		Dispatches:   handlers.NewDispatchHandler(rs, in.Dispatches),
		Drivers:      handlers.NewDriverHandler(rs, in.Drivers),
		Users:        handlers.NewUserHandler(rs, in.Users, in.Auth),
		Transactions: handlers.NewTransactionHandler(rs, in.Payments),
		Pricing:      handlers.NewPricingHandler(rs, in.Pricing),
	}
}

type middlewaresIn struct {
	dig.In

	Logger    logx.Logger
	Registry  *prometheus.Registry
	HTTP      *middleware.HTTPMetrics
	Tokens    *auth.Tokens
	Users     *repository.UserRepo
	RateLimit *ratelimit.Middleware
}

func newMiddlewares(in middlewaresIn) router.Middlewares {
	authenticator := auth.Chain{
		auth.NewBearer(in.Tokens, in.Users),
		auth.NewSessionAuth(in.Tokens, in.Users),
	}
	return router.Middlewares{
		Observability: middleware.Observability(in.HTTP, in.Logger),
		Authenticate:  middleware.Authenticate(authenticator, in.Logger),
		RateLimit:     in.RateLimit,
		Metrics:       promhttp.HandlerFor(in.Registry, promhttp.HandlerOpts{}),
	}
}

func newServer(cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func registerHTTP(container *dig.Container) error {
	if err := provideAll(container,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouterHandlers,
		newMiddlewares,
		router.New,
		newServer,
	); err != nil {
		return err
	}
	return registerPprof(container)
}

func registerPprof(container *dig.Container) error {
	provider := func(cfg *config.Config) *http.Server {
		return pprofserver.New(cfg.Debug)
	}
	if err := container.Provide(provider, dig.Name(pprofServerName)); err != nil {
		return fmt.Errorf("provide pprof server: %w", err)
	}
	return nil
}
