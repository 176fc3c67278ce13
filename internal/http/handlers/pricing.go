package handlers

import (
	"net/http"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

// PricingHandler serves fare models and estimates.
type PricingHandler struct {
	*Responder
	usecase pricingUsecase
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(rs *Responder, uc pricingUsecase) *PricingHandler {
	return &PricingHandler{Responder: rs, usecase: uc}
}

type createPricingRequest struct {
	ServiceType string  `json:"serviceType"`
	BaseFare    float64 `json:"baseFare"`
	PerKmRate   float64 `json:"perKmRate"`
	PerMinRate  float64 `json:"perMinRate"`
	IsActive    *bool   `json:"isActive"`
}

type estimateRequest struct {
	PriceID     string  `json:"priceId"`
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
}

// List handles GET /api/v1/pricing.
func (h *PricingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.usecase.List(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]pricingResponse, 0, len(list))
	for _, p := range list {
		out = append(out, pricingToResponse(p))
	}
	h.ok(w, r, http.StatusOK, "Pricing fetched", out)
}

// Create handles POST /api/v1/pricing.
func (h *PricingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPricingRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := h.usecase.Create(r.Context(), auth.PrincipalFrom(r.Context()), domain.Pricing{
		ServiceType: req.ServiceType,
		BaseFare:    req.BaseFare,
		PerKmRate:   req.PerKmRate,
		PerMinRate:  req.PerMinRate,
		IsActive:    active,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "Pricing created", pricingToResponse(*p))
}

// Estimate handles POST /api/v1/pricing/estimate.
func (h *PricingHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	e, err := h.usecase.Estimate(r.Context(), req.PriceID, req.DistanceKm, req.DurationMin)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Fare estimated", estimateResponse{
		PriceID:         e.PriceID,
		BaseCharges:     e.BaseCharges,
		DistanceCharges: e.DistanceCharges,
		TimeCharges:     e.TimeCharges,
		Total:           e.Total,
	})
}
