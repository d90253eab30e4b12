package constants

import "github.com/labstack/echo/v4"

// Echo context keys
const (
	RequestIDKey = "x-req-id"
	ClientIDKey  = "x-client-id"
)

// Request ID headers in order of preference
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderCorrelationID  = "X-Correlation-ID"
	HeaderRequestIDShort = "Request-ID"
)

// GetRequestIDFromHeaders returns the first request ID header present
func GetRequestIDFromHeaders(c echo.Context) string {
	for _, h := range []string{HeaderRequestID, HeaderCorrelationID, HeaderRequestIDShort} {
		if id := c.Request().Header.Get(h); id != "" {
			return id
		}
	}
	return ""
}

// GetRequestID extracts request ID from Echo context
func GetRequestID(c echo.Context) string {
	rid, _ := c.Get(RequestIDKey).(string)
	return rid
}

// GetClientID returns the authenticated client, "" when auth is disabled
func GetClientID(c echo.Context) string {
	id, _ := c.Get(ClientIDKey).(string)
	return id
}
