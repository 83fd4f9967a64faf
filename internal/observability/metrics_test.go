package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesSubmissionCounter(t *testing.T) {
	SubmissionsTotal().WithLabelValues(OutcomeDuplicate).Inc()
	SubmissionScores().Observe(50)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `suitetest_submissions_total{outcome="duplicate"}`)
	require.Contains(t, string(body), "suitetest_submission_score_bucket")
}

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
	require.NotNil(t, HTTPRequests())
	require.NotNil(t, NotificationsDropped())
}

func TestMetricsHandlerNegotiatesOpenMetrics(t *testing.T) {
	NotificationsDropped().Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/openmetrics-text; version=1.0.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/openmetrics-text")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "suitetest_notifications_dropped_total")
	require.Contains(t, string(body), "# EOF")
}
