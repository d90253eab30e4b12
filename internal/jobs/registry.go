package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/jobs/push"
	"github.com/benedict-erwin/lokiquery/internal/jobs/querystats"
	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
)

// JobRegistration holds job metadata for registration and status output
type JobRegistration struct {
	TaskType string        `json:"task_type"`
	Handler  asynq.Handler `json:"-"`
	Queue    string        `json:"queue"`
}

// Deps are the collaborators job handlers need
type Deps struct {
	Pusher  loki.Pusher
	Stats   influxdb.Writer
	Metrics *metrics.Metrics
}

// RegisterHandlers registers all job handlers with mux (when not nil) and
// returns their metadata
func RegisterHandlers(mux *asynq.ServeMux, deps Deps) ([]JobRegistration, error) {
	jobs := []JobRegistration{
		{
			TaskType: push.TypeLokiPush,
			Handler:  &push.Handler{Pusher: deps.Pusher, Metrics: deps.Metrics},
			Queue:    constants.QueueCritical,
		},
		{
			TaskType: querystats.TypeQueryStats,
			Handler:  &querystats.Handler{Writer: deps.Stats},
			Queue:    constants.QueueLow,
		},
	}

	for _, job := range jobs {
		if !constants.IsValidQueue(job.Queue) {
			return nil, fmt.Errorf("invalid queue '%s' for job '%s'. Valid queues: %v",
				job.Queue, job.TaskType, constants.GetAllQueues())
		}
	}

	if mux != nil {
		if deps.Pusher == nil {
			return nil, fmt.Errorf("job %s needs a Loki pusher", push.TypeLokiPush)
		}
		for _, job := range jobs {
			mux.Handle(job.TaskType, job.Handler)
		}
	}
	return jobs, nil
}

// GetRegisteredJobs returns job metadata without registering handlers
func GetRegisteredJobs() []JobRegistration {
	jobs, _ := RegisterHandlers(nil, Deps{})
	return jobs
}
