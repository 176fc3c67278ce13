package handlers

import (
	"net/http"
	"time"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

// AuthHandler serves registration, token and session endpoints.
type AuthHandler struct {
	*Responder
	usecase authUsecase
	// secure marks the session cookie Secure.
	secure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(rs *Responder, uc authUsecase, secureCookie bool) *AuthHandler {
	return &AuthHandler{Responder: rs, usecase: uc, secure: secureCookie}
}

type registerRequest struct {
	Identifier string      `json:"identifier"`
	Password   string      `json:"password"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role,omitempty"`
}

type credentialsRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.usecase.Register(r.Context(), auth.Registration{
		Identifier: req.Identifier,
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "User registered successfully", userToResponse(*u))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	pair, err := h.usecase.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Login successful", loginResponse{
		ID:           pair.User.ID,
		Name:         pair.User.Name,
		Role:         pair.User.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles POST /api/auth/refresh-token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	access, err := h.usecase.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Token refreshed", refreshResponse{AccessToken: access})
}

// OpenSession handles POST /api/auth/session and sets the admin session cookie.
func (h *AuthHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	s, err := h.usecase.OpenSession(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.ok(w, r, http.StatusOK, "Session opened", userToResponse(*s.User))
}

// CloseSession handles DELETE /api/auth/session.
func (h *AuthHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
