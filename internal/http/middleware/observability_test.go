package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
	testlog "service-booking/internal/testutil"
)

func TestObservability_UsesRoutePatternForLabels(t *testing.T) {
	t.Parallel()

	m, err := NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	logs := testlog.New()

	r := chi.NewRouter()
	r.Use(Observability(m, logs.Logger()))
	r.Get("/api/v1/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"o1", "o2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/v1/orders/{id}", "204")))
	require.Equal(t, 1, testutil.CollectAndCount(m.duration))

	e, ok := logs.Find("http request")
	require.True(t, ok)
	require.Equal(t, "info", e.Level)
	path, _ := e.Field("path")
	require.Equal(t, "/api/v1/orders/{id}", path)
}

func TestObservability_ServerErrorsLoggedAsError(t *testing.T) {
	t.Parallel()

	logs := testlog.New()
	h := Observability(nil, logs.Logger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids", nil)
	p := &domain.Principal{ID: "d1", Role: domain.RoleDriver, Scheme: domain.SchemeToken}
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(auth.WithPrincipal(req.Context(), p)))

	e, ok := logs.Find("http request")
	require.True(t, ok)
	require.Equal(t, "error", e.Level)
	uid, _ := e.Field("user_id")
	require.Equal(t, "d1", uid)
}

func TestNewHTTPMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewHTTPMetrics(reg)
	require.NoError(t, err)
	_, err = NewHTTPMetrics(reg)
	require.Error(t, err)
}
