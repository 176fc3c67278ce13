package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
	"service-booking/internal/ports/bookingtx"
)

// Service manages driver profiles and their KYC verification.
type Service struct {
	drivers          driverStore
	tx               bookingtx.Runner
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a new driver Service.
func NewService(drivers driverStore, tx bookingtx.Runner, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{drivers: drivers, tx: tx, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func requireAdmin(p *domain.Principal) error {
	switch {
	case p == nil:
		return apperr.ErrUnauthorized
	case !p.IsAdmin():
		return fmt.Errorf("%w: admin session required", apperr.ErrForbidden)
	default:
		return nil
	}
}

// FindEligible returns the approved, active drivers of vehicleType.
func (s *Service) FindEligible(ctx context.Context, p *domain.Principal, vehicleType string) ([]domain.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	vehicleType = strings.TrimSpace(vehicleType)
	if vehicleType == "" {
		v := apperr.NewValidation()
		v.Add("vehicleType", "required")
		return nil, v
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.drivers.ListEligibleDrivers(ctx, vehicleType)
}

// List returns a page of drivers with their profiles.
func (s *Service) List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.User, domain.Pagination, error) {
	if err := requireAdmin(p); err != nil {
		return nil, domain.Pagination{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	users, total, err := s.drivers.ListDrivers(ctx, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return users, domain.Paginate(page, total), nil
}

// Get returns a driver with its profile. An admin session may read any
// driver; a driver token only itself.
func (s *Service) Get(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	switch {
	case p == nil:
		return nil, apperr.ErrUnauthorized
	case p.IsAdmin():
	case p.Is(domain.SchemeToken, domain.RoleDriver) && id == p.ID:
	default:
		return nil, fmt.Errorf("%w: drivers may only read their own profile", apperr.ErrForbidden)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.driverAccount(ctx, id)
}

// KYCStatus reports which verification fields the calling driver has filled in.
func (s *Service) KYCStatus(ctx context.Context, p *domain.Principal) (domain.KYCChecklist, error) {
	switch {
	case p == nil:
		return domain.KYCChecklist{}, apperr.ErrUnauthorized
	case !p.Is(domain.SchemeToken, domain.RoleDriver):
		return domain.KYCChecklist{}, fmt.Errorf("%w: only drivers have a profile", apperr.ErrForbidden)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.driverAccount(ctx, p.ID)
	if err != nil {
		return domain.KYCChecklist{}, err
	}
	return domain.ChecklistOf(u), nil
}

func (s *Service) driverAccount(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Driver == nil {
		return nil, fmt.Errorf("%w: driver %q", apperr.ErrNotFound, id)
	}
	return u, nil
}

// SaveProfile stores the KYC fields of the calling driver and sends the profile
// back to review. License and number plate reuse is a conflict.
func (s *Service) SaveProfile(ctx context.Context, p *domain.Principal, upd domain.DriverProfileUpdate) (*domain.DriverProfile, error) {
	switch {
	case p == nil:
		return nil, apperr.ErrUnauthorized
	case !p.Is(domain.SchemeToken, domain.RoleDriver):
		return nil, fmt.Errorf("%w: only drivers have a profile", apperr.ErrForbidden)
	}

	upd.UserID = p.ID
	upd.License = trimmed(upd.License)
	upd.NumberPlate = trimmed(upd.NumberPlate)
	upd.VehicleType = trimmed(upd.VehicleType)

	v := apperr.NewValidation()
	v.Check(upd.License != nil || upd.NumberPlate != nil || upd.VehicleType != nil, "profile", "nothing to update")
	v.Check(upd.License == nil || *upd.License != "", "license", "must not be empty")
	v.Check(upd.NumberPlate == nil || *upd.NumberPlate != "", "numberPlate", "must not be empty")
	v.Check(upd.VehicleType == nil || *upd.VehicleType != "", "vehicleType", "must not be empty")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	profile, err := s.drivers.UpsertDriverProfile(ctx, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("driver profile saved",
		logx.String("event", "driver_profile_saved"),
		logx.String("driver_id", p.ID),
		logx.String("kyc_status", string(profile.KYCStatus)),
	)
	return profile, nil
}

// DecideKYC records an admin verification decision and notifies the driver.
func (s *Service) DecideKYC(ctx context.Context, p *domain.Principal, d domain.KYCDecision) (*domain.DriverProfile, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	d.UserID = strings.TrimSpace(d.UserID)
	v := apperr.NewValidation()
	v.Check(d.UserID != "", "driverId", "required")
	v.Check(d.Status == domain.KYCApproved || d.Status == domain.KYCRejected, "status", "must be APPROVED or REJECTED")
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var profile *domain.DriverProfile
	err := s.tx.WithTx(ctx, func(tx bookingtx.Repository) error {
		var err error
		profile, err = tx.UpdateKYC(ctx, d)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("%w: driver %q", apperr.ErrNotFound, d.UserID)
		}
		return tx.InsertInbox(ctx, domain.InboxMessage{
			UserID:  d.UserID,
			Message: fmt.Sprintf("Your KYC verification was %s", strings.ToLower(string(d.Status))),
			Topic:   domain.TopicKYC,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("kyc decided",
		logx.String("event", "kyc_decided"),
		logx.String("driver_id", d.UserID),
		logx.String("kyc_status", string(profile.KYCStatus)),
		logx.Bool("active", profile.IsActive),
	)
	return profile, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
