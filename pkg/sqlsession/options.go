package sqlsession

import (
	"database/sql"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sllt/sqlsession/pkg/sqlsession/dsn"
	"github.com/sllt/sqlsession/pkg/sqlsession/logging"
)

const tracerName = "github.com/sllt/sqlsession"

// Option configures a Session at construction.
type Option func(*options)

type options struct {
	logger     logging.Logger
	metrics    Metrics
	tracer     trace.Tracer
	sqlTracing bool
}

func newOptions(opts []Option) *options {
	o := &options{}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.NewLogger(logging.INFO)
	}

	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}

	return o
}

// WithLogger sets the logger statements and warnings are written to.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records statement durations, errors and open sessions on m.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer session operations start their spans from.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithSQLTracing opens the database handle through otelsql so driver calls get spans of their own.
// It has no effect on FromDB.
func WithSQLTracing() Option {
	return func(o *options) {
		o.sqlTracing = true
	}
}

func (o *options) open(t dsn.Target, user, password string) (*sql.DB, error) {
	if !o.sqlTracing {
		return sql.Open(t.DriverName(), t.DSN(user, password))
	}

	return otelsql.Open(t.DriverName(), t.DSN(user, password), otelsql.WithAttributes(
		attribute.String("db.system", string(t.Dialect)),
		attribute.String("db.name", t.Database),
	))
}
