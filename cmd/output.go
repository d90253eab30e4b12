package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/utils"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputRaw   = "raw"
)

func validOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputRaw:
		return nil
	}
	return fmt.Errorf("unknown output %q, want table, json or raw", format)
}

// formatLabels renders labels as {k="v", ...} with sorted keys
func formatLabels(labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// writeRecords prints one page of records. json writes one object per
// line so pages can be concatenated.
func writeRecords(w io.Writer, format string, records []loki.LogRecord) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case outputRaw:
		for _, r := range records {
			if _, err := fmt.Fprintln(w, r.Line); err != nil {
				return err
			}
		}
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Timestamp", "Labels", "Line"})
	for _, r := range records {
		if err := table.Append([]string{utils.FormatTime(r.Timestamp), formatLabels(r.Labels), r.Line}); err != nil {
			return err
		}
	}
	return table.Render()
}
