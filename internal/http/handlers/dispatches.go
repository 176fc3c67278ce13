package handlers

import (
	"net/http"
	"strings"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

// DispatchHandler serves the dispatch endpoints.
type DispatchHandler struct {
	*Responder
	usecase dispatchUsecase
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(rs *Responder, uc dispatchUsecase) *DispatchHandler {
	return &DispatchHandler{Responder: rs, usecase: uc}
}

type createDispatchRequest struct {
	OrderID  string                `json:"orderId"`
	DriverID string                `json:"driverId"`
	Status   domain.DispatchStatus `json:"status"`
}

type dispatchStatusRequest struct {
	Status domain.DispatchStatus `json:"status"`
}

// Create handles POST /api/v1/dispatches.
func (h *DispatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDispatchRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.usecase.Create(r.Context(), auth.PrincipalFrom(r.Context()), domain.NewDispatch{
		OrderID:  req.OrderID,
		DriverID: req.DriverID,
		Status:   domain.DispatchStatus(strings.ToUpper(string(req.Status))),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "Dispatch created successfully", dispatchToResponse(*d))
}

// UpdateStatus handles PATCH /api/v1/dispatches/{id}.
func (h *DispatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req dispatchStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	status := domain.DispatchStatus(strings.ToUpper(string(req.Status)))
	d, err := h.usecase.UpdateStatus(r.Context(), auth.PrincipalFrom(r.Context()), id, status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Dispatch updated", dispatchToResponse(*d))
}

// List handles GET /api/v1/dispatches?page&limit.
func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, pg, err := h.usecase.List(r.Context(), auth.PrincipalFrom(r.Context()), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]dispatchResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dispatchToResponse(d))
	}
	h.page(w, r, "Dispatches fetched", out, listPaginationOf(pg))
}
