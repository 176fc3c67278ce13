package handlers

import (
	"net/http"
	"strings"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

// TransactionHandler serves payment records.
type TransactionHandler struct {
	*Responder
	usecase transactionUsecase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(rs *Responder, uc transactionUsecase) *TransactionHandler {
	return &TransactionHandler{Responder: rs, usecase: uc}
}

type createTransactionRequest struct {
	OrderID       string               `json:"orderId"`
	Amount        float64              `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Status        domain.PaymentStatus `json:"status,omitempty"`
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	t, err := h.usecase.Create(r.Context(), auth.PrincipalFrom(r.Context()), domain.NewTransaction{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		PaymentMethod: domain.PaymentMethod(strings.ToUpper(string(req.PaymentMethod))),
		Status:        domain.PaymentStatus(strings.ToUpper(string(req.Status))),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "Transaction recorded", transactionToResponse(*t))
}

// List handles GET /api/v1/transactions?page&limit.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
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
	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, transactionToResponse(t))
	}
	h.page(w, r, "Transactions fetched", out, listPaginationOf(pg))
}
