package router

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/modelstore"
)

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *fiber.App {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.ModelStore.Path = filepath.Join(dir, "model.json")
	cfg.Output.Dir = dir
	if mutate != nil {
		mutate(cfg)
	}

	store := modelstore.NewFileStore(cfg.ModelStore.Path)
	_, err := store.Save(context.Background(), forecast.Model{Slope: 2, Intercept: -3990})
	require.NoError(t, err)

	app, h := New(logging.Nop(), modelstore.NewCache(store), cfg)
	require.NotNil(t, h)
	return app
}

func TestRouter_Routes(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		method string
		target string
		status int
	}{
		{"GET", "/health", fiber.StatusOK},
		{"GET", "/v1/model", fiber.StatusOK},
		{"GET", "/v1/predict?year=2030", fiber.StatusOK},
		{"GET", "/v1/forecast?from=2020&horizon=2", fiber.StatusOK},
		{"GET", "/v1/plot", fiber.StatusNotFound},
		{"GET", "/v1/cache", fiber.StatusOK},
		{"GET", "/v1/unknown", fiber.StatusNotFound},
		{"POST", "/v1/model", fiber.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, "%s %s", tt.method, tt.target)
	}
}

func TestRouter_RequestID(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/model", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(logging.RequestIDHeader))

	req := httptest.NewRequest("GET", "/v1/model", nil)
	req.Header.Set(logging.RequestIDHeader, "req-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(logging.RequestIDHeader))
}

func TestRouter_Auth(t *testing.T) {
	key := strings.Repeat("s", 40)
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Viewer.AuthEnabled = true
		cfg.Viewer.APIKeys = []string{key}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "health is public")

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/model", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/v1/model", nil)
	req.Header.Set("X-API-Key", key)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
