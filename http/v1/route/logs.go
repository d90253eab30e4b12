package route

import (
	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/http/middleware"
	"github.com/benedict-erwin/lokiquery/http/registry"
	"github.com/benedict-erwin/lokiquery/http/v1/handler"
	"github.com/benedict-erwin/lokiquery/pkg/auth"
)

func init() {
	registry.Register("v1", func(g *echo.Group) {
		logs := g.Group("/logs")

		read := logs.Group("", middleware.JWTAuthMiddleware(auth.PermReadLogs))
		read.GET("/query", handler.QueryLogs)
		read.POST("/query", handler.QueryLogs)

		logs.POST("/push", handler.PushLogs, middleware.JWTAuthMiddleware(auth.PermCreateLogs))

		g.GET("/queues", handler.QueueStatus, middleware.JWTAuthMiddleware(auth.PermReadQueues))
	})
}
