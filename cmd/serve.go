package cmd

import (
	"github.com/spf13/cobra"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/http/v1/handler"
	"github.com/benedict-erwin/lokiquery/internal/services/health"
	"github.com/benedict-erwin/lokiquery/internal/services/logs"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/auth"
	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
	"github.com/benedict-erwin/lokiquery/pkg/redis"
	"github.com/benedict-erwin/lokiquery/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP gateway",
	Long:  `Starts the lokiquery HTTP gateway`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Start HTTP gateway without supervision",
	Long:  `Starts the gateway in the foreground with debug logging, for hot reload tools`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if logLevel == "" {
			cfg.App.LogLevel = "debug"
			logger.Init(cfg.App.LogLevel, cfg.App.Env, cfg.App.Timezone)
		}
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(devCmd)
}

// runServer opens the optional backends, wires the services and serves
// until a shutdown signal arrives. Optional backends that fail to open are
// logged and left out.
func runServer() error {
	cfg := config.Get()
	log := logger.WithScope("runServer")

	client, err := newLokiClient()
	if err != nil {
		return err
	}

	if err := auth.InitAuth(); err != nil {
		return err
	}

	m := metrics.Default()
	checks := []health.Check{health.LokiCheck(client)}

	var shared redis.Client
	if cfg.Cache.Enabled && cfg.Cache.Redis {
		if err := redis.InitCache(); err != nil {
			log.Warn().Err(err).Msg("Shared cache unavailable, using memory only")
		} else {
			shared = redis.GetCache()
			checks = append(checks, health.RedisCheck())
		}
	}

	var dispatcher asynqPkg.Dispatcher
	if err := asynqPkg.InitClient(); err != nil {
		log.Warn().Err(err).Msg("Queue unavailable, async push and query stats disabled")
	} else {
		dispatcher = asynqPkg.DispatcherFunc(asynqPkg.DispatchJob)
		checks = append(checks, health.AsynqCheck())
	}

	if cfg.InfluxDB.Enabled {
		checks = append(checks, health.InfluxDBCheck())
		if err := influxdb.Init(); err != nil {
			log.Warn().Err(err).Msg("InfluxDB unavailable")
		}
	}

	handler.Init(handler.Deps{
		Logs: logs.NewService(client, logs.Options{
			DefaultLimit: cfg.Loki.DefaultLimit,
			CacheEnabled: cfg.Cache.Enabled,
			CacheSize:    cfg.Cache.MaxEntries,
			CacheTTL:     cfg.Cache.TTL,
			SharedCache:  shared,
			Metrics:      m,
			Dispatcher:   dispatcher,
			App:          cfg.App.Name,
			Tester:       cfg.App.Tester,
		}),
		Health: health.NewChecker(cfg.App.Version, checks...),
	})

	var metricsPath string
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	e := server.New(m, metricsPath)
	if Listener != nil {
		e.Listener = Listener
	}

	return server.Start(e, cfg.App.Port, func() {
		influxdb.Close()
		if err := redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
		asynqPkg.CloseClient()
	})
}
