package middleware

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
	"github.com/benedict-erwin/lokiquery/pkg/utils"
)

// Logger assigns a request ID, writes the access log and counts the
// request in m when it is set
func Logger(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqId := constants.GetRequestIDFromHeaders(c)
			if reqId == "" {
				reqId = generateRequestID()
			}
			c.Set(constants.RequestIDKey, reqId)
			c.Response().Header().Set(constants.HeaderRequestID, reqId)

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			if m != nil {
				// route template, not the raw path, keeps label cardinality bounded
				m.ObserveHTTP(c.Request().Method, c.Path(), status)
			}

			logger.WithScope("accessLog").Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Int64("latency", time.Since(start).Microseconds()).
				Str("request-id", reqId).
				Str("client_id", constants.GetClientID(c)).
				Msg("HTTP Request")

			return err
		}
	}
}

// generateRequestID creates unique request identifier with timestamp and random component
func generateRequestID() string {
	return fmt.Sprintf("req-%d-%08x", utils.Now().Unix(), rand.Uint32())
}
