package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedict-erwin/lokiquery/pkg/loki"
)

func TestFormatLabels(t *testing.T) {
	assert.Equal(t, `{app="x", env="prod"}`, formatLabels(map[string]string{"env": "prod", "app": "x"}))
	assert.Equal(t, "{}", formatLabels(nil))
}

func TestWriteRecords(t *testing.T) {
	records := []loki.LogRecord{
		{Timestamp: time.Unix(1, 0).UTC(), Line: "first", Labels: map[string]string{"app": "x"}},
		{Timestamp: time.Unix(2, 0).UTC(), Line: "second", Labels: map[string]string{"app": "x"}},
	}

	var raw bytes.Buffer
	require.NoError(t, writeRecords(&raw, outputRaw, records))
	assert.Equal(t, "first\nsecond\n", raw.String())

	var js bytes.Buffer
	require.NoError(t, writeRecords(&js, outputJSON, records))
	lines := strings.Split(strings.TrimSpace(js.String()), "\n")
	require.Len(t, lines, 2)
	var rec loki.LogRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "second", rec.Line)

	var table bytes.Buffer
	require.NoError(t, writeRecords(&table, outputTable, records))
	assert.Contains(t, table.String(), "first")
	assert.Contains(t, table.String(), `{app="x"}`)

	assert.Error(t, validOutput("yaml"))
}

func TestSecretSize(t *testing.T) {
	assert.Equal(t, 32, secretSize("HS256"))
	assert.Equal(t, 48, secretSize("HS384"))
	assert.Equal(t, 64, secretSize("HS512"))
	assert.Len(t, randomHex(16), 32)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		lokiURL = ""
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQueryCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `{app="x"}`, r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"status":"success","data":{"resultType":"streams","result":[
			{"stream":{"app":"x"},"values":[["1000000000","a"],["2000000000","b"]]}
		]}}`)
	}))
	defer srv.Close()

	stdout, stderr, err := execute(t, "query", `{app="x"}`, "--url", srv.URL, "--limit", "2", "-o", "raw")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", stdout)
	assert.Contains(t, stderr, "next cursor: 2000000001")
}

func TestQueryCommandReportsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer srv.Close()

	_, _, err := execute(t, "query", "q", "--url", srv.URL, "-o", "raw")
	require.Error(t, err)
	assert.Equal(t, "Error 500: boom", err.Error())
}

func TestReadyCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ready")
	}))
	defer srv.Close()

	stdout, _, err := execute(t, "ready", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, srv.URL+" ready in")
}
