package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"service-booking/internal/http/handlers"
	"service-booking/internal/http/middleware/ratelimit"
)

// requestTimeout bounds handler time; the multipart upload path is the slowest.
const requestTimeout = 15 * time.Second

// Handlers groups the endpoint handlers mounted by New.
type Handlers struct {
	Base         *handlers.Handlers
	Auth         *handlers.AuthHandler
	Orders       *handlers.OrderHandler
	Bids         *handlers.BidHandler
	Dispatches   *handlers.DispatchHandler
	Drivers      *handlers.DriverHandler
	Users        *handlers.UserHandler
	Transactions *handlers.TransactionHandler
	Pricing      *handlers.PricingHandler
}

// Middlewares are the cross-cutting layers. Nil entries are skipped.
type Middlewares struct {
	Observability func(http.Handler) http.Handler
	Authenticate  func(http.Handler) http.Handler
	RateLimit     *ratelimit.Middleware
	// Metrics serves GET /metrics.
	Metrics http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h Handlers, mw Middlewares) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if mw.Observability != nil {
		r.Use(mw.Observability)
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/ping", h.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.Base.HealthcheckHead))
	if mw.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", mw.Metrics)
	}
	r.NotFound(http.HandlerFunc(h.Base.NotFound))

	limit := func(scope string) func(http.Handler) http.Handler {
		if mw.RateLimit == nil {
			return passThrough
		}
		return mw.RateLimit.Handler(scope)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit("register")).Post("/register", h.Auth.Register)
			r.With(limit("login")).Post("/login", h.Auth.Login)
			r.With(limit("refresh")).Post("/refresh-token", h.Auth.Refresh)
			r.With(limit("session")).Post("/session", h.Auth.OpenSession)
			r.Delete("/session", h.Auth.CloseSession)
		})

		r.Route("/v1", func(r chi.Router) {
			if mw.Authenticate != nil {
				r.Use(mw.Authenticate)
			}

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Orders.Create)
				r.Get("/", h.Orders.List)
				r.Get("/{id}", h.Orders.Get)
				r.Get("/{id}/bids", h.Orders.ListBids)
			})

			r.Post("/bids", h.Bids.Place)
			r.Post("/bids/{id}/decision", h.Bids.Decide)

			r.Route("/dispatches", func(r chi.Router) {
				r.Post("/", h.Dispatches.Create)
				r.Get("/", h.Dispatches.List)
				r.Patch("/{id}", h.Dispatches.UpdateStatus)
			})

			r.Route("/drivers", func(r chi.Router) {
				r.Get("/", h.Drivers.List)
				r.Get("/eligible", h.Drivers.Eligible)
				r.Put("/me", h.Drivers.SaveProfile)
				r.Get("/{id}", h.Drivers.Get)
				r.Patch("/{id}/kyc", h.Drivers.DecideKYC)
			})
			r.Get("/kyc/status", h.Drivers.KYCStatus)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Get("/me", h.Users.Me)
				r.Patch("/me", h.Users.UpdateMe)
			})
			r.Get("/customers", h.Users.ListCustomers)

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", h.Transactions.Create)
				r.Get("/", h.Transactions.List)
			})

			r.Route("/pricing", func(r chi.Router) {
				r.Get("/", h.Pricing.List)
				r.Post("/", h.Pricing.Create)
				r.Post("/estimate", h.Pricing.Estimate)
			})
		})
	})

	return r
}

func passThrough(next http.Handler) http.Handler { return next }
