package sqlsession

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/sllt/sqlsession/pkg/sqlsession/logging"
)

//go:generate mockgen -source=stats.go -destination=mock_metrics.go -package=sqlsession

// Metrics is the subset of metrics.Manager the session records to.
type Metrics interface {
	NewHistogram(name, desc string, buckets ...float64)
	NewCounter(name, desc string)
	NewUpDownCounter(name, desc string)

	RecordHistogram(ctx context.Context, name string, value float64, labels ...string)
	IncrementCounter(ctx context.Context, name string, labels ...string)
	DeltaUpDownCounter(ctx context.Context, name string, value float64, labels ...string)
}

const (
	metricStats        = "app_sql_stats"
	metricErrors       = "app_sql_errors"
	metricOpenSessions = "app_sql_open_sessions"
)

// RegisterMetrics creates the session instruments on m. It is safe to call once per Manager;
// sessions sharing a Manager share the instruments.
func RegisterMetrics(m Metrics) {
	m.NewHistogram(metricStats, "Response time of SQL queries in milliseconds.",
		.05, .075, .1, .125, .15, .2, .3, .5, .75, 1, 2, 3, 4, 5, 7.5, 10)
	m.NewCounter(metricErrors, "Number of failed SQL session operations.")
	m.NewUpDownCounter(metricOpenSessions, "Number of open SQL sessions.")
}

// Log is the DEBUG entry written for every statement the session runs.
type Log struct {
	Type     string `json:"type"`
	Query    string `json:"query"`
	Duration int64  `json:"duration"`
	Args     []any  `json:"args,omitempty"`
}

func (l *Log) PrettyPrint(writer io.Writer) {
	fmt.Fprintf(writer, "\u001B[38;5;8m%-32s \u001B[38;5;24m%-6s\u001B[0m %8d\u001B[38;5;8mµs\u001B[0m %s\n",
		l.Type, "SQL", l.Duration, clean(l.Query))
}

var whitespace = regexp.MustCompile(`\s+`)

func clean(query string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(query, " "))
}

func getOperationType(query string) string {
	query = strings.TrimSpace(query)
	words := strings.Fields(query)

	if len(words) == 0 {
		return ""
	}

	return strings.ToUpper(words[0])
}

func (s *Session) sendStats(ctx context.Context, start time.Time, queryType, query string, args ...any) {
	duration := time.Since(start)

	logging.NewContextLogger(ctx, s.logger).Debug(&Log{
		Type:     queryType,
		Query:    query,
		Duration: duration.Microseconds(),
		Args:     args,
	})

	if s.metrics != nil {
		s.metrics.RecordHistogram(ctx, metricStats, float64(duration.Microseconds())/1e3,
			"hostname", s.hostName, "database", s.database, "type", getOperationType(query))
	}
}

func (s *Session) countError(ctx context.Context, err error) {
	if s.metrics == nil || err == nil {
		return
	}

	s.metrics.IncrementCounter(ctx, metricErrors, "kind", KindOf(err).String())
}

func (s *Session) countOpen(ctx context.Context, delta float64) {
	if s.metrics == nil {
		return
	}

	s.metrics.DeltaUpDownCounter(ctx, metricOpenSessions, delta, "database", s.database)
}
