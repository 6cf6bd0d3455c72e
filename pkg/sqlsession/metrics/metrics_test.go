package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logRecorder struct {
	errors   []string
	warnings []string
}

func (l *logRecorder) Errorf(format string, _ ...any) { l.errors = append(l.errors, format) }
func (l *logRecorder) Warnf(format string, _ ...any)  { l.warnings = append(l.warnings, format) }

func newTestManager(t *testing.T) (Manager, *Provider, *logRecorder) {
	t.Helper()

	p, err := NewPrometheusProvider("sqlsession-test")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = p.Shutdown(context.Background())
	})

	logs := &logRecorder{}

	return NewMetricsManager(p.Meter, logs), p, logs
}

func scrape(t *testing.T, p *Provider) string {
	t.Helper()

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

func TestManager_RecordsAndExports(t *testing.T) {
	m, p, logs := newTestManager(t)
	ctx := context.Background()

	m.NewHistogram("app_sql_stats", "Response time of SQL queries in milliseconds.", 1, 5, 10)
	m.NewCounter("app_sql_errors", "Number of failed SQL session operations.")
	m.NewUpDownCounter("app_sql_open_sessions", "Number of open SQL sessions.")

	m.RecordHistogram(ctx, "app_sql_stats", 3, "type", "SELECT")
	m.IncrementCounter(ctx, "app_sql_errors", "kind", "execution")
	m.DeltaUpDownCounter(ctx, "app_sql_open_sessions", 1)

	body := scrape(t, p)

	assert.Contains(t, body, `app_sql_stats_bucket{type="SELECT",le="5"} 1`)
	assert.Contains(t, body, `app_sql_errors_total{kind="execution"} 1`)
	assert.Contains(t, body, `app_sql_open_sessions 1`)
	assert.Empty(t, logs.errors)
}

func TestManager_UnknownMetric(t *testing.T) {
	m, _, logs := newTestManager(t)

	m.IncrementCounter(context.Background(), "missing")
	m.RecordHistogram(context.Background(), "missing", 1)
	m.DeltaUpDownCounter(context.Background(), "missing", 1)

	assert.Len(t, logs.errors, 3)
}

func TestManager_DuplicateRegistration(t *testing.T) {
	m, _, logs := newTestManager(t)

	m.NewCounter("app_sql_errors", "first")
	m.NewCounter("app_sql_errors", "second")

	assert.Len(t, logs.warnings, 1)
}

func TestManager_OddLabels(t *testing.T) {
	m, _, logs := newTestManager(t)

	m.NewCounter("app_sql_errors", "errors")
	m.IncrementCounter(context.Background(), "app_sql_errors", "kind")

	assert.Len(t, logs.errors, 1)
}

func TestLabelsToAttributes(t *testing.T) {
	attrs, err := labelsToAttributes([]string{"hostname", "db1", "database", "app"})

	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "hostname", string(attrs[0].Key))
	assert.Equal(t, "app", attrs[1].Value.AsString())

	_, err = labelsToAttributes([]string{"single"})
	require.ErrorIs(t, err, errInvalidLabelPairs)
}
