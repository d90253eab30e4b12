package cmd

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/entities/logquery"
	pushJob "github.com/benedict-erwin/lokiquery/internal/jobs/push"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/utils"
)

var (
	pushLabels map[string]string
	pushAsync  bool
)

var pushCmd = &cobra.Command{
	Use:   "push [line...]",
	Short: "Push test lines to Loki",
	Long: `Pushes lines with the default labels (app, host, date parts and the
configured tester) merged under --label values. Without arguments lines
are read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := args
		if len(lines) == 0 {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if line := scanner.Text(); line != "" {
					lines = append(lines, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}
		}
		if len(lines) == 0 {
			return fmt.Errorf("nothing to push")
		}

		cfg := config.Get()
		now := utils.Now()
		payload := logquery.PushRequest{Labels: pushLabels, Lines: lines}.
			ToPayload(loki.DefaultLabels(cfg.App.Name, cfg.App.Tester, now), now)

		if pushAsync {
			if err := asynqPkg.InitClient(); err != nil {
				return err
			}
			defer asynqPkg.CloseClient()
			if err := asynqPkg.DispatchJob(pushJob.NewPayload(payload)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %d lines\n", len(lines))
			return nil
		}

		client, err := newLokiClient()
		if err != nil {
			return err
		}
		ctx, cancel := contextWithTimeout(cmd, cfg.Loki.Timeout)
		defer cancel()
		if err := client.Push(ctx, payload.Streams...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pushed %d lines %s\n", len(lines), formatLabels(payload.Streams[0].Stream))
		return nil
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Check that Loki is ready",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newLokiClient()
		if err != nil {
			return err
		}
		ctx, cancel := contextWithTimeout(cmd, config.Get().Loki.Timeout)
		defer cancel()

		elapsed, err := client.Ready(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ready in %s\n", client.BaseURL(), elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	pushCmd.Flags().StringToStringVarP(&pushLabels, "label", "L", nil, "extra label, repeatable: --label env=test")
	pushCmd.Flags().BoolVar(&pushAsync, "async", false, "queue the push for the worker instead of sending it")

	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(readyCmd)
}
