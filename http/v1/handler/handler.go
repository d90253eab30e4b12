package handler

import (
	"github.com/benedict-erwin/lokiquery/internal/services/health"
	"github.com/benedict-erwin/lokiquery/internal/services/logs"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
)

// Deps are the services behind the v1 handlers
type Deps struct {
	Logs   *logs.Service
	Health *health.Checker
	// Queues defaults to asynq inspection of the configured Redis
	Queues func() ([]asynqPkg.QueueStats, error)
}

var deps Deps

// Init sets the services used by the handlers, before the server starts
func Init(d Deps) {
	if d.Queues == nil {
		d.Queues = asynqPkg.InspectQueues
	}
	deps = d
}
