package handlers

import (
	"errors"
	"net/http"

	"service-booking/internal/apperr"
	"service-booking/internal/logx"
)

// LegacyRuleMessage is the body reported for business-rule rejections in legacy mode.
const LegacyRuleMessage = "Something went wrong."

// Responder writes response envelopes and maps service errors to statuses.
type Responder struct {
	logger logx.Logger
	// legacy reports driver/order rule rejections as a generic 500.
	legacy bool
}

// NewResponder creates a Responder. legacyRuleErrors restores the generic
// 500 for bid and dispatch rule rejections.
func NewResponder(logger logx.Logger, legacyRuleErrors bool) *Responder {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Responder{logger: logger, legacy: legacyRuleErrors}
}

func (rs *Responder) statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, apperr.ErrForbidden):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperr.ErrNoDriversAvailable):
		return http.StatusNotFound, "no drivers available"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperr.ErrDriverNotEligible):
		if rs.legacy {
			return http.StatusInternalServerError, LegacyRuleMessage
		}
		return http.StatusConflict, "driver not eligible"
	case errors.Is(err, apperr.ErrOrderNotAvailable):
		if rs.legacy {
			return http.StatusInternalServerError, LegacyRuleMessage
		}
		return http.StatusConflict, "order not available"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (rs *Responder) ok(w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	writeJSON(rs.logger, w, r, status, envelope{Message: msg, Data: data})
}

func (rs *Responder) page(w http.ResponseWriter, r *http.Request, msg string, data any, p any) {
	writeJSON(rs.logger, w, r, http.StatusOK, envelope{Message: msg, Data: data, Pagination: p})
}

func (rs *Responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := rs.statusFor(err)

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		rs.logger.Info("http error",
			logx.String("req_id", reqID(r.Context())),
			logx.Int("status", status),
			logx.Any("fields", verr.Fields),
		)
		writeJSON(rs.logger, w, r, status, errResponse{Error: msg, Errors: verr.Fields})
		return
	}
	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed",
			logx.String("req_id", reqID(r.Context())),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
	}
	writeError(rs.logger, w, r, status, msg)
}
