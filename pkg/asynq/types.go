package asynq

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/config"
)

// Payload describes a task to enqueue
type Payload struct {
	TaskId   string      // Asynq TaskID, generated when empty
	TaskType string      // Asynq task type
	Queue    string      // target queue, default when empty
	Data     interface{} // JSON encoded into the task payload
}

// Dispatcher enqueues tasks
type Dispatcher interface {
	Dispatch(payload *Payload) error
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(payload *Payload) error

func (f DispatcherFunc) Dispatch(payload *Payload) error {
	return f(payload)
}

// RedisOpt builds the asynq connection option from application config
func RedisOpt(cfg *config.Config) asynq.RedisConnOpt {
	if cfg.Redis.Mode == "cluster" {
		return asynq.RedisClusterClientOpt{
			Addrs:    cfg.Redis.Cluster.Nodes,
			Password: cfg.Redis.Cluster.Password,
		}
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Asynq.DB,
		PoolSize: cfg.Asynq.PoolSize,
	}
}
