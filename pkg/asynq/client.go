package asynq

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var client *asynq.Client

// InitClient initializes the Asynq client
func InitClient() error {
	cfg := config.Get()
	client = asynq.NewClient(RedisOpt(cfg))
	logger.Info().
		Str("mode", cfg.Redis.Mode).
		Str("host", cfg.Redis.Host).
		Int("port", cfg.Redis.Port).
		Int("db", cfg.Asynq.DB).
		Msg("Asynq client initialized")
	return nil
}

// GetClient returns the current Asynq client instance
func GetClient() *asynq.Client {
	return client
}

// DispatchJob enqueues payload on the process wide client
func DispatchJob(payload *Payload) error {
	if client == nil {
		return fmt.Errorf("queue client not available")
	}
	return Enqueue(client, payload)
}

// Enqueue encodes payload and enqueues it. Duplicates are not an error.
func Enqueue(c *asynq.Client, payload *Payload) error {
	if payload == nil {
		return fmt.Errorf("payload cannot be nil")
	}

	log := logger.WithScope("DispatchJob")

	data, err := json.Marshal(payload.Data)
	if err != nil {
		log.Error().Err(err).Str("taskType", payload.TaskType).Msg("Failed to marshal task payload")
		return err
	}

	if payload.TaskId == "" {
		payload.TaskId = uuid.NewString()
	}
	queue := payload.Queue
	if queue == "" || !constants.IsValidQueue(queue) {
		queue = constants.QueueDefault
	}

	_, err = c.Enqueue(
		asynq.NewTask(payload.TaskType, data),
		asynq.Queue(queue),
		asynq.Unique(5*time.Minute),
		asynq.TaskID(payload.TaskId),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Warn().
				Str("taskId", payload.TaskId).
				Str("taskType", payload.TaskType).
				Msg("Duplicate task ignored - already in queue")
			return nil
		}
		log.Error().
			Err(err).
			Str("taskId", payload.TaskId).
			Str("taskType", payload.TaskType).
			Msg("Failed to enqueue task")
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Debug().
		Str("taskId", payload.TaskId).
		Str("taskType", payload.TaskType).
		Str("queue", queue).
		Msg("Task enqueued")
	return nil
}

// CloseClient closes the Asynq client connection
func CloseClient() {
	if client != nil {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Asynq client")
		} else {
			logger.Info().Msg("Asynq client closed")
		}
		client = nil
	}
}
