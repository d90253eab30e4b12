package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/services/health"
	"github.com/benedict-erwin/lokiquery/pkg/response"
	"github.com/benedict-erwin/lokiquery/pkg/utils"
)

// HealthDetailed reports every dependency and the Go runtime
func HealthDetailed(c echo.Context) error {
	status := deps.Health.Health(c.Request().Context())

	httpStatus := http.StatusOK
	switch status.Status {
	case health.StatusUnhealthy:
		httpStatus = http.StatusServiceUnavailable
	case health.StatusDegraded:
		httpStatus = http.StatusPartialContent
	}

	return response.General(c, httpStatus, constants.CodeSuccess, map[string]interface{}{
		"health": status,
	}, "Health check completed")
}

// HealthLive returns basic liveness check
func HealthLive(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"status":    "alive",
		"timestamp": utils.FormatTime(utils.Now()),
	})
}

// HealthReady reports whether Loki can be queried
func HealthReady(c echo.Context) error {
	status := deps.Health.Readiness(c.Request().Context())

	httpStatus := http.StatusOK
	code := constants.CodeSuccess
	if status.Status != health.StatusReady {
		httpStatus = http.StatusServiceUnavailable
		code = constants.CodeServiceUnavailable
	}

	return response.General(c, httpStatus, code, map[string]interface{}{
		"readiness": status,
	}, "Readiness check completed")
}
