package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/metrics"
)

func TestMetricsEndpoint(t *testing.T) {
	metrics.Init()
	metrics.Init()

	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", metrics.MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	gt.NoError(t, err).Required()
	gt.Value(t, resp.StatusCode).Equal(fiber.StatusOK)

	metrics.AlertsGenerated.WithLabelValues("HIGH").Inc()

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	gt.NoError(t, err).Required()
	body, err := io.ReadAll(resp.Body)
	gt.NoError(t, err).Required()

	gt.String(t, string(body)).Contains(`regulens_http_request_duration_seconds_count{route="/ping",status="200"} 1`)
	gt.String(t, string(body)).Contains(`regulens_alerts_generated_total{severity="HIGH"} 1`)
}
