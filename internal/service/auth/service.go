package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/logx"
)

// Service registers users and exchanges credentials for tokens.
type Service struct {
	users            userStore
	tokens           *Tokens
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a new auth Service.
func NewService(users userStore, tokens *Tokens, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{users: users, tokens: tokens, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Registration is the input of Register. Identifier is an email or a phone number.
type Registration struct {
	Identifier string
	Password   string
	Name       string
	Role       domain.Role
}

// TokenPair is the result of a mobile login.
type TokenPair struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// Session is the result of an admin web login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a CUSTOMER or DRIVER account.
func (s *Service) Register(ctx context.Context, in Registration) (*domain.User, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = domain.RoleCustomer
	}

	v := apperr.NewValidation()
	v.Check(in.Identifier != "", "identifier", "required")
	v.Check(in.Name != "", "name", "required")
	v.Check(len(in.Password) >= minPasswordLen, "password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	v.Check(in.Role == domain.RoleCustomer || in.Role == domain.RoleDriver, "role", "must be CUSTOMER or DRIVER")
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{Name: in.Name, PasswordHash: hash, Role: in.Role}
	setIdentifier(u, in.Identifier)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		logx.String("event", "user_registered"),
		logx.String("user_id", u.ID),
		logx.String("role", string(u.Role)),
	)
	return u, nil
}

// Account is an admin-created user. License and VehicleType seed the
// profile of a DRIVER account.
type Account struct {
	Registration
	License     *string
	VehicleType string
}

// CreateAccount creates a user of any role on behalf of an admin.
func (s *Service) CreateAccount(ctx context.Context, p *domain.Principal, in Account) (*domain.User, error) {
	switch {
	case p == nil:
		return nil, apperr.ErrUnauthorized
	case !p.IsAdmin():
		return nil, fmt.Errorf("%w: admin session required", apperr.ErrForbidden)
	}
	in.Identifier = strings.TrimSpace(in.Identifier)
	in.Name = strings.TrimSpace(in.Name)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	if in.License != nil {
		l := strings.TrimSpace(*in.License)
		in.License = &l
	}
	if in.Role == "" {
		in.Role = domain.RoleCustomer
	}

	v := apperr.NewValidation()
	v.Check(in.Identifier != "", "identifier", "required")
	v.Check(in.Name != "", "name", "required")
	v.Check(len(in.Password) >= minPasswordLen, "password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	v.Check(in.Role.Valid(), "role", "must be CUSTOMER, DRIVER or ADMIN")
	v.Check(in.License == nil || *in.License != "", "license", "must not be empty")
	v.Check(in.Role == domain.RoleDriver || (in.License == nil && in.VehicleType == ""), "license", "only drivers have a profile")
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Name: in.Name, PasswordHash: hash, Role: in.Role}
	setIdentifier(u, in.Identifier)
	if in.Role == domain.RoleDriver {
		u.Driver = &domain.DriverProfile{License: in.License, VehicleType: in.VehicleType}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		logx.String("event", "account_created"),
		logx.String("user_id", u.ID),
		logx.String("role", string(u.Role)),
		logx.String("admin_id", p.ID),
	)
	return u, nil
}

func setIdentifier(u *domain.User, identifier string) {
	if isEmail(identifier) {
		email := strings.ToLower(identifier)
		u.Email = &email
		return
	}
	phone := identifier
	u.Phone = &phone
}

// Login checks credentials and issues an access and a refresh token.
func (s *Service) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	u, err := s.authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	access, _, err := s.tokens.Issue(KindAccess, u.ID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.Issue(KindRefresh, u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Verify(KindRefresh, strings.TrimSpace(refreshToken))
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", fmt.Errorf("%w: unknown user", apperr.ErrUnauthorized)
	}

	access, _, err := s.tokens.Issue(KindAccess, u.ID)
	return access, err
}

// OpenSession logs an admin in for the web dashboard.
func (s *Service) OpenSession(ctx context.Context, identifier, password string) (*Session, error) {
	u, err := s.authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleAdmin {
		s.logger.Warn("session refused",
			logx.String("user_id", u.ID),
			logx.String("role", string(u.Role)),
		)
		return nil, fmt.Errorf("%w: sessions are for admins", apperr.ErrForbidden)
	}
	tok, exp, err := s.tokens.Issue(KindSession, u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: tok, ExpiresAt: exp}, nil
}

func (s *Service) authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperr.ErrInvalid
	}
	if isEmail(identifier) {
		identifier = strings.ToLower(identifier)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	ok, err := checkPassword(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	return u, nil
}

func isEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}
