//go:build integration

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"service-booking/internal/logx"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("booking_app"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestContainer_RegisterLoginAndListOrders(t *testing.T) {
	dsn := startPostgres(t)
	resetFlags(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	t.Setenv("SESSION_SECRET", "session")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewContainerBuilder().
		WithDBConnect(func(ctx context.Context, logger logx.Logger, _ string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
			return connectDbWithRetry(ctx, logger, dsn, retries, delay)
		}).
		build(ctx)
	require.NoError(t, err)

	err = c.Invoke(func(pool *pgxpool.Pool, migrate migrateFunc, h http.Handler) {
		defer pool.Close()
		require.NoError(t, migrate(ctx, pool))

		do := func(method, target, body, token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		rec := do(http.MethodPost, "/api/auth/register",
			`{"identifier":"ada@example.com","password":"password123","name":"Ada"}`, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(http.MethodPost, "/api/auth/login",
			`{"identifier":"ada@example.com","password":"password123"}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var login struct {
			Data struct {
				AccessToken string `json:"accessToken"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
		require.NotEmpty(t, login.Data.AccessToken)

		rec = do(http.MethodGet, "/api/v1/orders", "", login.Data.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
	require.NoError(t, err)
}
