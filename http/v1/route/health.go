package route

import (
	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/http/middleware"
	"github.com/benedict-erwin/lokiquery/http/registry"
	"github.com/benedict-erwin/lokiquery/http/v1/handler"
	"github.com/benedict-erwin/lokiquery/pkg/auth"
)

// init registers v1 health check routes with the registry
func init() {
	registry.Register("v1", func(g *echo.Group) {
		// public probes
		g.GET("/health/live", handler.HealthLive)
		g.GET("/health/ready", handler.HealthReady)

		g.GET("/health", handler.HealthDetailed, middleware.JWTAuthMiddleware(auth.ActionRead+":health"))
	})
}
