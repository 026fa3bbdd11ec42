package handler

import (
	"net/http"

	"github.com/GustaavooC/mooda-sub000/prometheus"
	"github.com/labstack/echo/v4"
)

// HealthCheck returns service liveness
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"service": "mooda",
	})
}

// MetricsHandler serves the Prometheus scrape endpoint
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
