package asynq

import (
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/constants"
)

// QueueStats is a snapshot of one queue
type QueueStats struct {
	Queue     string
	Size      int
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
	Processed int
	Failed    int
	Paused    bool
}

// InspectQueues reports every known queue. Queues that were never used are
// reported empty.
func InspectQueues() ([]QueueStats, error) {
	inspector := asynq.NewInspector(RedisOpt(config.Get()))
	defer inspector.Close()

	stats := make([]QueueStats, 0, len(constants.GetAllQueues()))
	for _, q := range constants.GetAllQueues() {
		info, err := inspector.GetQueueInfo(q)
		if err != nil {
			if errors.Is(err, asynq.ErrQueueNotFound) {
				stats = append(stats, QueueStats{Queue: q})
				continue
			}
			return nil, fmt.Errorf("inspect queue %s: %w", q, err)
		}
		stats = append(stats, QueueStats{
			Queue:     info.Queue,
			Size:      info.Size,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
			Processed: info.Processed,
			Failed:    info.Failed,
			Paused:    info.Paused,
		})
	}
	return stats, nil
}
