package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
)

// MaxImageSize is the largest accepted profile picture.
const MaxImageSize = 5 << 20

const (
	imageFolder   = "profile"
	maxNameLen    = 50
	maxAddressLen = 50
)

// Service serves account self-service and the admin user directory.
type Service struct {
	users            userStore
	images           imageStore
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a new user Service.
func NewService(users userStore, images imageStore, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{users: users, images: images, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Me returns the calling account.
func (s *Service) Me(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.get(ctx, p.ID)
}

func (s *Service) get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", apperr.ErrNotFound, id)
	}
	return u, nil
}

// UpdateMe changes the name, address or picture of the calling account.
// A replaced picture is removed from the object store once the row is saved.
func (s *Service) UpdateMe(ctx context.Context, p *domain.Principal, upd domain.ProfileUpdate) (*domain.User, error) {
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	upd.UserID = p.ID
	upd.Name = trimmed(upd.Name)
	upd.Address = trimmed(upd.Address)
	if err := validateProfile(upd); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var img *domain.Image
	if upd.Image != nil {
		uploaded, err := s.images.Upload(ctx, imageFolder, *upd.Image)
		if err != nil {
			return nil, fmt.Errorf("upload profile image: %w", err)
		}
		img = &uploaded
	}

	u, err := s.users.UpdateProfile(ctx, p.ID, upd.Name, upd.Address, img)
	if err == nil && u == nil {
		err = fmt.Errorf("%w: user %q", apperr.ErrNotFound, p.ID)
	}
	if err != nil {
		if img != nil {
			s.discardImage(ctx, img.ID)
		}
		return nil, err
	}
	if img != nil && current.Image != nil && current.Image.ID != "" {
		s.discardImage(ctx, current.Image.ID)
	}

	s.logger.Info("profile updated",
		logx.String("event", "profile_updated"),
		logx.String("user_id", p.ID),
		logx.Bool("image_replaced", img != nil),
	)
	return u, nil
}

func (s *Service) discardImage(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.operationTimeout)
	defer cancel()
	if err := s.images.Delete(ctx, id); err != nil {
		s.logger.Warn("orphan profile image",
			logx.String("image_id", id),
			logx.Err(err),
		)
	}
}

func validateProfile(upd domain.ProfileUpdate) error {
	v := apperr.NewValidation()
	v.Check(upd.Name != nil || upd.Address != nil || upd.Image != nil, "profile", "nothing to update")
	if upd.Name != nil {
		n := len([]rune(*upd.Name))
		v.Check(n >= 2 && n <= maxNameLen, "name", fmt.Sprintf("must be 2 to %d characters", maxNameLen))
	}
	if upd.Address != nil {
		n := len([]rune(*upd.Address))
		v.Check(n >= 2 && n <= maxAddressLen, "address", fmt.Sprintf("must be 2 to %d characters", maxAddressLen))
	}
	if img := upd.Image; img != nil {
		v.Check(len(img.Data) > 0, "image", "empty file")
		v.Check(int64(len(img.Data)) <= MaxImageSize, "image", fmt.Sprintf("must be at most %d bytes", MaxImageSize))
		v.Check(strings.HasPrefix(img.ContentType, "image/"), "image", "must be an image")
	}
	return v.Err()
}

// List returns a page of every account.
func (s *Service) List(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.User, domain.Pagination, error) {
	return s.list(ctx, p, nil, page)
}

// ListCustomers returns a page of CUSTOMER accounts.
func (s *Service) ListCustomers(ctx context.Context, p *domain.Principal, page domain.Page) ([]domain.User, domain.Pagination, error) {
	role := domain.RoleCustomer
	return s.list(ctx, p, &role, page)
}

func (s *Service) list(ctx context.Context, p *domain.Principal, role *domain.Role, page domain.Page) ([]domain.User, domain.Pagination, error) {
	switch {
	case p == nil:
		return nil, domain.Pagination{}, apperr.ErrUnauthorized
	case !p.IsAdmin():
		return nil, domain.Pagination{}, fmt.Errorf("%w: admin session required", apperr.ErrForbidden)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	users, total, err := s.users.ListUsers(ctx, role, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return users, domain.Paginate(page, total), nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
