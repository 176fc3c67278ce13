package handlers

import (
	"net/http"
	"strings"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

// BidHandler serves bid placement and decisions.
type BidHandler struct {
	*Responder
	usecase bidUsecase
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(rs *Responder, uc bidUsecase) *BidHandler {
	return &BidHandler{Responder: rs, usecase: uc}
}

type placeBidRequest struct {
	OrderID string           `json:"orderId"`
	Amount  float64          `json:"amount"`
	Status  domain.BidStatus `json:"status,omitempty"`
}

type decisionRequest struct {
	Status domain.BidStatus `json:"status"`
}

// Place handles POST /api/v1/bids. A repeated bid by the same driver updates it.
func (h *BidHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	res, err := h.usecase.PlaceBid(r.Context(), auth.PrincipalFrom(r.Context()), domain.PlaceBid{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Status:  domain.BidStatus(strings.ToUpper(string(req.Status))),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "Bid updated successfully"
	if res.Created {
		msg = "Bid placed successfully"
	}
	h.ok(w, r, http.StatusCreated, msg, bidToResponse(res.Bid))
}

// Decide handles POST /api/v1/bids/{id}/decision.
func (h *BidHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req decisionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	res, err := h.usecase.DecideBid(r.Context(), auth.PrincipalFrom(r.Context()), domain.BidDecision{
		BidID:  id,
		Status: domain.BidStatus(strings.ToUpper(string(req.Status))),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "Bid rejected"
	if res.Bid.Status == domain.BidAccepted {
		msg = "Bid accepted"
	}
	h.ok(w, r, http.StatusOK, msg, decisionToResponse(*res))
}
