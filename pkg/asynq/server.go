package asynq

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var server *asynq.Server

// InitServer configures the worker server with weighted queues
func InitServer() *asynq.Server {
	cfg := config.Get()
	log := logger.WithScope("InitServer")

	concurrency := cfg.Asynq.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	queues := constants.QueueWeights()

	server = asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency:     concurrency,
			Queues:          queues,
			ShutdownTimeout: 30 * time.Second,
			Logger:          newAsynqLogger(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().
					Err(err).
					Str("task_type", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("Task processing failed")
			}),
		},
	)

	log.Info().
		Int("concurrency", concurrency).
		Interface("queues", queues).
		Msg("Asynq server initialized")
	return server
}

// GetServer returns the current Asynq server instance
func GetServer() *asynq.Server {
	return server
}

// CloseServer shuts the server down, waiting for running tasks
func CloseServer() {
	if server != nil {
		server.Shutdown()
		logger.Info().Msg("Asynq server shut down")
		server = nil
	}
}

// asynqLogger routes asynq's internal logging through zerolog
type asynqLogger struct {
	log *logger.ScopedLogger
}

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{log: logger.WithScope("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
