package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/jobs"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Manage background job workers",
	Long:  `Runs and inspects the Asynq worker that delivers queued pushes and query statistics`,
}

var (
	workerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start background job worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startWorker()
		},
	}

	workerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show current queue status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd)
		},
	}
)

func init() {
	workerCmd.AddCommand(workerStartCmd)
	workerCmd.AddCommand(workerStatusCmd)
	rootCmd.AddCommand(workerCmd)
}

// startWorker runs the Asynq server until SIGINT or SIGTERM
func startWorker() error {
	log := logger.WithScope("startWorker")
	cfg := config.Get()

	client, err := newLokiClient()
	if err != nil {
		return err
	}

	deps := jobs.Deps{Pusher: client}
	if cfg.InfluxDB.Enabled {
		if err := influxdb.Init(); err != nil {
			log.Warn().Err(err).Msg("InfluxDB unavailable, query stats will be retried")
		}
		defer influxdb.Close()
	}

	server := asynqPkg.InitServer()
	mux := asynq.NewServeMux()
	registered, err := jobs.RegisterHandlers(mux, deps)
	if err != nil {
		return fmt.Errorf("failed to register job handlers: %w", err)
	}
	for _, job := range registered {
		log.Info().Str("task_type", job.TaskType).Str("queue", job.Queue).Msg("Job handler registered")
	}

	if err := server.Start(mux); err != nil {
		return fmt.Errorf("failed to start worker server: %w", err)
	}
	log.Info().Str("loki", client.BaseURL()).Msg("Worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal, waiting for running tasks")

	asynqPkg.CloseServer()
	log.Info().Msg("Worker server stopped gracefully")
	return nil
}

// showStatus prints queue sizes and the registered jobs
func showStatus(cmd *cobra.Command) error {
	stats, err := asynqPkg.InspectQueues()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	weights := constants.QueueWeights()

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Queue", "Weight", "Size", "Pending", "Active", "Retry", "Archived", "Processed", "Failed", "Paused"})
	for _, s := range stats {
		if err := table.Append([]string{
			s.Queue,
			strconv.Itoa(weights[s.Queue]),
			strconv.Itoa(s.Size),
			strconv.Itoa(s.Pending),
			strconv.Itoa(s.Active),
			strconv.Itoa(s.Retry),
			strconv.Itoa(s.Archived),
			strconv.Itoa(s.Processed),
			strconv.Itoa(s.Failed),
			strconv.FormatBool(s.Paused),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	jobsTable := tablewriter.NewWriter(out)
	jobsTable.Header([]string{"Task Type", "Queue"})
	for _, job := range jobs.GetRegisteredJobs() {
		if err := jobsTable.Append([]string{job.TaskType, job.Queue}); err != nil {
			return err
		}
	}
	return jobsTable.Render()
}
