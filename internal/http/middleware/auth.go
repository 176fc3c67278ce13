package middleware

import (
	"errors"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"service-booking/internal/apperr"
	"service-booking/internal/logx"
	"service-booking/internal/service/auth"
)

// Authenticate resolves the request principal with a and stores it in the
// request context. Requests without credentials pass through anonymously;
// a present but invalid credential is answered with 401.
func Authenticate(a auth.Authenticator, logger logx.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				status, body := http.StatusUnauthorized, `{"error":"unauthorized"}`
				if !errors.Is(err, apperr.ErrUnauthorized) {
					status, body = http.StatusInternalServerError, `{"error":"internal error"}`
					logger.Error("authentication failed",
						logx.String("req_id", chimw.GetReqID(r.Context())),
						logx.Err(err),
					)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if _, werr := io.WriteString(w, body); werr != nil {
					logger.Debug("auth response write failed", logx.Err(werr))
				}
				return
			}
			if p != nil {
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}
