package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/utils"
)

var (
	configPath string
	lokiURL    string
	logLevel   string

	// Listener is handed over by overseer in supervised mode
	Listener net.Listener
)

var rootCmd = &cobra.Command{
	Use:   "lokiquery",
	Short: "Loki log query client and gateway",
	Long: `lokiquery queries Grafana Loki over its query_range API, follows
pagination cursors, pushes test lines and serves the same operations
as an HTTP gateway.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./.config.json)")
	rootCmd.PersistentFlags().StringVar(&lokiURL, "url", "", "Loki base URL, overrides loki.url")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides app.log_level")
}

// bootstrap loads config and sets up logging. Infrastructure is opened by
// the commands that need it.
func bootstrap() error {
	if err := config.Init(configPath); err != nil {
		return err
	}
	cfg := config.Get()
	if lokiURL != "" {
		cfg.Loki.URL = lokiURL
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Env, cfg.App.Timezone)
	if err := utils.InitTimezone(); err != nil {
		logger.Warn().Err(err).Msg("Timezone initialization failed, continuing with UTC")
	}
	return nil
}

// newLokiClient builds the client from the loaded configuration
func newLokiClient() (*loki.Client, error) {
	cfg := config.Get().Loki
	if cfg.URL == "" {
		return nil, fmt.Errorf("loki.url is not set")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	opts := []loki.Option{
		loki.WithHTTPClient(&http.Client{Timeout: cfg.Timeout, Transport: transport}),
		loki.WithTenantID(cfg.TenantID),
	}
	if cfg.QueryPath != "" {
		opts = append(opts, loki.WithQueryPath(cfg.QueryPath))
	}
	if cfg.PushPath != "" {
		opts = append(opts, loki.WithPushPath(cfg.PushPath))
	}
	if cfg.ReadyPath != "" {
		opts = append(opts, loki.WithReadyPath(cfg.ReadyPath))
	}
	if cfg.Username != "" {
		opts = append(opts, loki.WithBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.SortResults {
		opts = append(opts, loki.WithSortedResults())
	}
	if cfg.GzipPush {
		opts = append(opts, loki.WithGzipPush())
	}
	return loki.NewClient(cfg.URL, opts...), nil
}

// ServeAddress is the listen address of the gateway for supervised mode
func ServeAddress() string {
	port := 8080
	if err := config.Init(""); err == nil {
		port = config.Get().App.Port
	}
	return fmt.Sprintf(":%d", port)
}

func contextWithTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
