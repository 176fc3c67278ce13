package handlers

import (
	"net/http"
	"strings"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

// DriverHandler serves driver listings, profiles and KYC decisions.
type DriverHandler struct {
	*Responder
	usecase driverUsecase
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(rs *Responder, uc driverUsecase) *DriverHandler {
	return &DriverHandler{Responder: rs, usecase: uc}
}

type profileRequest struct {
	License     *string `json:"license"`
	NumberPlate *string `json:"numberPlate"`
	VehicleType *string `json:"vehicleType"`
}

type kycRequest struct {
	Status   domain.KYCStatus `json:"status"`
	IsActive *bool            `json:"isActive"`
}

func usersToResponse(in []domain.User) []userResponse {
	out := make([]userResponse, 0, len(in))
	for _, u := range in {
		out = append(out, userToResponse(u))
	}
	return out
}

// List handles GET /api/v1/drivers?page&limit.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, pg, err := h.usecase.List(r.Context(), auth.PrincipalFrom(r.Context()), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, "Drivers fetched", usersToResponse(users), listPaginationOf(pg))
}

// Eligible handles GET /api/v1/drivers/eligible?vehicleType=.
func (h *DriverHandler) Eligible(w http.ResponseWriter, r *http.Request) {
	vt := r.URL.Query().Get("vehicleType")
	users, err := h.usecase.FindEligible(r.Context(), auth.PrincipalFrom(r.Context()), vt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Eligible drivers fetched", usersToResponse(users))
}

// SaveProfile handles PUT /api/v1/drivers/me.
func (h *DriverHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	p, err := h.usecase.SaveProfile(r.Context(), auth.PrincipalFrom(r.Context()), domain.DriverProfileUpdate{
		License:     req.License,
		NumberPlate: req.NumberPlate,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Driver profile saved", profileToResponse(p))
}

// DecideKYC handles PATCH /api/v1/drivers/{id}/kyc.
func (h *DriverHandler) DecideKYC(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req kycRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	p, err := h.usecase.DecideKYC(r.Context(), auth.PrincipalFrom(r.Context()), domain.KYCDecision{
		UserID:   id,
		Status:   domain.KYCStatus(strings.ToUpper(string(req.Status))),
		IsActive: req.IsActive,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "KYC decision recorded", profileToResponse(p))
}

// Get handles GET /api/v1/drivers/{id}.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	u, err := h.usecase.Get(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Driver fetched", userToResponse(*u))
}

// KYCStatus handles GET /api/v1/kyc/status.
func (h *DriverHandler) KYCStatus(w http.ResponseWriter, r *http.Request) {
	c, err := h.usecase.KYCStatus(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "KYC status fetched", kycStatusToResponse(c))
}
