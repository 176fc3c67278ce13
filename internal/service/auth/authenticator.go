package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
)

// SessionCookie is the name of the admin web session cookie.
const SessionCookie = "booking_session"

// Authenticator resolves the principal of a request. It returns (nil, nil)
// when the request carries none of its credentials.
type Authenticator interface {
	Authenticate(r *http.Request) (*domain.Principal, error)
}

// Chain tries authenticators in order. The first one that finds its
// credential decides; a present but invalid credential fails the request.
type Chain []Authenticator

// Authenticate implements Authenticator.
func (c Chain) Authenticate(r *http.Request) (*domain.Principal, error) {
	for _, a := range c {
		p, err := a.Authenticate(r)
		if err != nil || p != nil {
			return p, err
		}
	}
	return nil, nil
}

type userGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Bearer authenticates mobile clients by the access token in the Authorization header.
type Bearer struct {
	tokens *Tokens
	users  userGetter
}

// NewBearer creates a Bearer authenticator.
func NewBearer(tokens *Tokens, users userGetter) *Bearer {
	return &Bearer{tokens: tokens, users: users}
}

// Authenticate implements Authenticator.
func (b *Bearer) Authenticate(r *http.Request) (*domain.Principal, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, nil
	}
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: malformed authorization header", apperr.ErrUnauthorized)
	}
	userID, err := b.tokens.Verify(KindAccess, strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return principalOf(r.Context(), b.users, userID, domain.SchemeToken)
}

// SessionAuth authenticates the admin dashboard by its session cookie.
type SessionAuth struct {
	tokens *Tokens
	users  userGetter
}

// NewSessionAuth creates a SessionAuth authenticator.
func NewSessionAuth(tokens *Tokens, users userGetter) *SessionAuth {
	return &SessionAuth{tokens: tokens, users: users}
}

// Authenticate implements Authenticator.
func (s *SessionAuth) Authenticate(r *http.Request) (*domain.Principal, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	userID, err := s.tokens.Verify(KindSession, c.Value)
	if err != nil {
		return nil, err
	}
	return principalOf(r.Context(), s.users, userID, domain.SchemeSession)
}

func principalOf(ctx context.Context, users userGetter, userID string, scheme domain.AuthScheme) (*domain.Principal, error) {
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: unknown user", apperr.ErrUnauthorized)
	}
	return &domain.Principal{
		ID:     u.ID,
		Name:   u.Name,
		Role:   u.Role,
		Scheme: scheme,
		Driver: u.Driver,
	}, nil
}
