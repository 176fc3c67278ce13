package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"service-booking/internal/apperr"
	"service-booking/internal/config"
)

// Kind separates access, refresh and session tokens. Each kind has its own secret
// and lifetime, and a token of one kind never validates as another.
type Kind string

// List of token kinds
const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindSession Kind = "session"
)

type claims struct {
	Type Kind `json:"typ"`
	jwt.RegisteredClaims
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	keys map[Kind]signingKey
	now  func() time.Time
}

// NewTokens creates Tokens from the auth settings.
func NewTokens(cfg config.Auth) *Tokens {
	return &Tokens{
		keys: map[Kind]signingKey{
			KindAccess:  {secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
			KindRefresh: {secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
			KindSession: {secret: []byte(cfg.SessionSecret), ttl: cfg.SessionTTL},
		},
		now: time.Now,
	}
}

// Issue signs a token of kind for userID and returns it with its expiry.
func (t *Tokens) Issue(kind Kind, userID string) (string, time.Time, error) {
	k, ok := t.keys[kind]
	if !ok || len(k.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("no secret for %s tokens", kind)
	}
	now := t.now()
	exp := now.Add(k.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(k.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, exp, nil
}

// Verify checks raw as a token of kind and returns its subject.
// Any failure is apperr.ErrUnauthorized.
func (t *Tokens) Verify(kind Kind, raw string) (string, error) {
	k, ok := t.keys[kind]
	if !ok || len(k.secret) == 0 {
		return "", fmt.Errorf("%w: %s tokens disabled", apperr.ErrUnauthorized, kind)
	}
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", apperr.ErrUnauthorized)
		}
		return "", fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	if c.Type != kind || c.Subject == "" {
		return "", fmt.Errorf("%w: wrong token type", apperr.ErrUnauthorized)
	}
	return c.Subject, nil
}
