package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/jobs"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/response"
)

// QueueStatus reports the background queues and the registered jobs
func QueueStatus(c echo.Context) error {
	stats, err := deps.Queues()
	if err != nil {
		logger.WithScope("QueueStatus").Error().Err(err).Msg("Failed to inspect queues")
		return response.FailWithCode(c, constants.CodeRedisUnavailable)
	}

	return response.Success(c, map[string]interface{}{
		"queues": stats,
		"jobs":   jobs.GetRegisteredJobs(),
	})
}
