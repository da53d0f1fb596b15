package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrometheusApp(t *testing.T) (*fiber.App, *PrometheusMiddleware) {
	t.Helper()
	m, err := NewPrometheusMiddleware(prometheus.NewRegistry())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/experiences/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/bookings/:id/cancel", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "invalid transition")
	})
	app.Get("/bookings/:id", func(c *fiber.Ctx) error {
		// Handlers answer missing resources themselves and return nil.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app, m
}

func TestPrometheusMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		path   string
		status string
	}{
		{name: "route pattern, not raw id", method: "GET", target: "/experiences/6f1c", path: "/experiences/:id", status: "200"},
		{name: "fiber error status", method: "POST", target: "/bookings/b-1/cancel", path: "/bookings/:id/cancel", status: "409"},
		{name: "handler 404 keeps its route", method: "GET", target: "/bookings/b-1", path: "/bookings/:id", status: "404"},
		{name: "router miss collapses", method: "GET", target: "/wp-login.php", path: unmatchedPath, status: "404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := newPrometheusApp(t)

			_, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues(tt.method, tt.path, tt.status)))
			assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
			assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
		})
	}
}

func TestPrometheusMiddleware_SkipsMetricsScrape(t *testing.T) {
	app, m := newPrometheusApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
	assert.Equal(t, 0, testutil.CollectAndCount(m.requestDuration))
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
