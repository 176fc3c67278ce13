package handlers

import (
	"context"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

type authUsecase interface {
	Register(ctx context.Context, in auth.Registration) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	OpenSession(ctx context.Context, identifier, password string) (*auth.Session, error)
}

type orderUsecase interface {
	Create(ctx context.Context, p *domain.Principal, in domain.NewOrder) (*domain.Order, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.Order, error)
	List(ctx context.Context, p *domain.Principal, status *domain.OrderStatus, page domain.Page) ([]domain.Order, domain.Pagination, error)
	ListBids(ctx context.Context, p *domain.Principal, orderID string) ([]domain.Bid, error)
}

type bidUsecase interface {
	PlaceBid(ctx context.Context, p *domain.Principal, in domain.PlaceBid) (*domain.BidResult, error)
	DecideBid(ctx context.Context, p *domain.Principal, in domain.BidDecision) (*domain.DecisionResult, error)
}

type dispatchUsecase interface {
	Create(ctx context.Context, p *domain.Principal, in domain.NewDispatch) (*domain.Dispatch, error)
	UpdateStatus(ctx context.Context, p *domain.Principal, id string, status domain.DispatchStatus) (*domain.Dispatch, error)
	List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.Dispatch, domain.Pagination, error)
}

type driverUsecase interface {
	FindEligible(ctx context.Context, p *domain.Principal, vehicleType string) ([]domain.User, error)
	List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.User, domain.Pagination, error)
	SaveProfile(ctx context.Context, p *domain.Principal, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error)
	DecideKYC(ctx context.Context, p *domain.Principal, d domain.KYCDecision) (*domain.DriverProfile, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.User, error)
	KYCStatus(ctx context.Context, p *domain.Principal) (domain.KYCChecklist, error)
}

type userUsecase interface {
	Me(ctx context.Context, p *domain.Principal) (*domain.User, error)
	UpdateMe(ctx context.Context, p *domain.Principal, upd domain.ProfileUpdate) (*domain.User, error)
	List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.User, domain.Pagination, error)
	ListCustomers(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.User, domain.Pagination, error)
}

type accountUsecase interface {
	CreateAccount(ctx context.Context, p *domain.Principal, in auth.Account) (*domain.User, error)
}

type transactionUsecase interface {
	Create(ctx context.Context, p *domain.Principal, in domain.NewTransaction) (*domain.Transaction, error)
	List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.Transaction, domain.Pagination, error)
}

type pricingUsecase interface {
	List(ctx context.Context, p *domain.Principal) ([]domain.Pricing, error)
	Create(ctx context.Context, p *domain.Principal, in domain.Pricing) (*domain.Pricing, error)
	Estimate(ctx context.Context, priceID string, distanceKm, durationMin float64) (*domain.FareEstimate, error)
}
