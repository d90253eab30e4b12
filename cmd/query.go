package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/entities/logquery"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
)

// queryFlags are shared by query and paginate
type queryFlags struct {
	body     logquery.QueryRequest
	output   string
	maxPages int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVarP(&f.body.Limit, "limit", "l", 0, "maximum records per page (default loki.default_limit)")
	fl.StringVar(&f.body.Start, "start", "", "window start, RFC3339 or epoch nanoseconds (16+ digits)")
	fl.StringVar(&f.body.End, "end", "", "window end, RFC3339 or epoch nanoseconds (16+ digits)")
	fl.StringVar(&f.body.Since, "since", "", "window start relative to now, e.g. 30m")
	fl.StringVar(&f.body.Until, "until", "", "window end relative to now, e.g. 5m")
	fl.StringVarP(&f.body.Direction, "direction", "d", "", "forward or backward (default forward)")
	fl.StringVar(&f.body.Step, "step", "", "query resolution step, e.g. 30s")
	fl.StringVar(&f.body.Cursor, "cursor", "", "resume from a cursor printed by a previous page")
	fl.StringVarP(&f.output, "output", "o", outputTable, "table, json or raw")
}

func (f *queryFlags) request(query string) (loki.QueryRequest, error) {
	if err := validOutput(f.output); err != nil {
		return loki.QueryRequest{}, err
	}
	f.body.Query = query
	if f.body.Direction != "" && f.body.Direction != string(loki.Forward) && f.body.Direction != string(loki.Backward) {
		return loki.QueryRequest{}, fmt.Errorf("direction must be forward or backward")
	}
	return f.body.ToLokiRequest(config.Get().Loki.DefaultLimit)
}

var queryOpts queryFlags

var queryCmd = &cobra.Command{
	Use:   "query <logql>",
	Short: "Run one page of a LogQL query",
	Long: `Runs a single query_range request. When the page is full the cursor
for the next page is printed to stderr; pass it back with --cursor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := queryOpts.request(args[0])
		if err != nil {
			return err
		}
		client, err := newLokiClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		outcome := client.QueryLogs(ctx, req)
		if err := writeRecords(cmd.OutOrStdout(), queryOpts.output, outcome.Records); err != nil {
			return err
		}
		if outcome.HasNext() {
			fmt.Fprintf(cmd.ErrOrStderr(), "next cursor: %s\n", outcome.NextCursor)
		}
		return outcome.Err
	},
}

var paginateOpts queryFlags

var paginateCmd = &cobra.Command{
	Use:   "paginate <logql>",
	Short: "Follow cursors until the query is exhausted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := paginateOpts.request(args[0])
		if err != nil {
			return err
		}
		client, err := newLokiClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var writeErr error
		result := client.Paginate(ctx, req, paginateOpts.maxPages, func(p loki.Page) bool {
			writeErr = writeRecords(cmd.OutOrStdout(), paginateOpts.output, p.Outcome.Records)
			return writeErr == nil
		})
		if writeErr != nil {
			return writeErr
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "pages: %d, records: %d\n", result.Pages, result.Records)
		if result.Stalled {
			fmt.Fprintln(cmd.ErrOrStderr(), "stopped: next cursor resolves to the window already read")
		}
		if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
			return result.Err
		}
		return nil
	},
}

func init() {
	queryOpts.register(queryCmd)
	paginateOpts.register(paginateCmd)
	paginateCmd.Flags().IntVar(&paginateOpts.maxPages, "max-pages", 10, "stop after this many pages, 0 for no limit")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(paginateCmd)
}
