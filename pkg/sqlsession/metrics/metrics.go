// Package metrics registers and records sqlsession instruments through the OpenTelemetry metric API.
// Instruments are exported in the Prometheus text format by the handler returned from GetHandler.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	errMetricDoesNotExist   = errors.New("metric is not registered")
	errMetricAlreadyExists  = errors.New("metric is already registered")
	errInvalidLabelPairs    = errors.New("labels must be key/value pairs")
	errInstrumentNotCreated = errors.New("instrument could not be created")
)

// Logger is the subset of logging.Logger used by the manager.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Manager creates instruments by name and records values against them.
type Manager interface {
	NewCounter(name, desc string)
	NewUpDownCounter(name, desc string)
	NewHistogram(name, desc string, buckets ...float64)

	IncrementCounter(ctx context.Context, name string, labels ...string)
	DeltaUpDownCounter(ctx context.Context, name string, value float64, labels ...string)
	RecordHistogram(ctx context.Context, name string, value float64, labels ...string)
}

type metricsManager struct {
	meter  metric.Meter
	logger Logger

	mu         sync.RWMutex
	counters   map[string]metric.Int64Counter
	upDowns    map[string]metric.Float64UpDownCounter
	histograms map[string]metric.Float64Histogram
}

// NewMetricsManager returns a Manager creating its instruments on meter.
func NewMetricsManager(meter metric.Meter, logger Logger) Manager {
	return &metricsManager{
		meter:      meter,
		logger:     logger,
		counters:   make(map[string]metric.Int64Counter),
		upDowns:    make(map[string]metric.Float64UpDownCounter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (m *metricsManager) NewCounter(name, desc string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.counters[name]; ok {
		m.logger.Warnf("%v: %s", errMetricAlreadyExists, name)
		return
	}

	c, err := m.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		m.logger.Errorf("%v: %s: %v", errInstrumentNotCreated, name, err)
		return
	}

	m.counters[name] = c
}

func (m *metricsManager) NewUpDownCounter(name, desc string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.upDowns[name]; ok {
		m.logger.Warnf("%v: %s", errMetricAlreadyExists, name)
		return
	}

	c, err := m.meter.Float64UpDownCounter(name, metric.WithDescription(desc))
	if err != nil {
		m.logger.Errorf("%v: %s: %v", errInstrumentNotCreated, name, err)
		return
	}

	m.upDowns[name] = c
}

func (m *metricsManager) NewHistogram(name, desc string, buckets ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.histograms[name]; ok {
		m.logger.Warnf("%v: %s", errMetricAlreadyExists, name)
		return
	}

	opts := []metric.Float64HistogramOption{metric.WithDescription(desc)}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}

	h, err := m.meter.Float64Histogram(name, opts...)
	if err != nil {
		m.logger.Errorf("%v: %s: %v", errInstrumentNotCreated, name, err)
		return
	}

	m.histograms[name] = h
}

func (m *metricsManager) IncrementCounter(ctx context.Context, name string, labels ...string) {
	m.mu.RLock()
	c, ok := m.counters[name]
	m.mu.RUnlock()

	if !ok {
		m.logger.Errorf("%v: %s", errMetricDoesNotExist, name)
		return
	}

	attrs, err := labelsToAttributes(labels)
	if err != nil {
		m.logger.Errorf("%s: %v", name, err)
		return
	}

	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsManager) DeltaUpDownCounter(ctx context.Context, name string, value float64, labels ...string) {
	m.mu.RLock()
	c, ok := m.upDowns[name]
	m.mu.RUnlock()

	if !ok {
		m.logger.Errorf("%v: %s", errMetricDoesNotExist, name)
		return
	}

	attrs, err := labelsToAttributes(labels)
	if err != nil {
		m.logger.Errorf("%s: %v", name, err)
		return
	}

	c.Add(ctx, value, metric.WithAttributes(attrs...))
}

func (m *metricsManager) RecordHistogram(ctx context.Context, name string, value float64, labels ...string) {
	m.mu.RLock()
	h, ok := m.histograms[name]
	m.mu.RUnlock()

	if !ok {
		m.logger.Errorf("%v: %s", errMetricDoesNotExist, name)
		return
	}

	attrs, err := labelsToAttributes(labels)
	if err != nil {
		m.logger.Errorf("%s: %v", name, err)
		return
	}

	h.Record(ctx, value, metric.WithAttributes(attrs...))
}

func labelsToAttributes(labels []string) ([]attribute.KeyValue, error) {
	if len(labels)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d values", errInvalidLabelPairs, len(labels))
	}

	attrs := make([]attribute.KeyValue, 0, len(labels)/2)
	for i := 0; i < len(labels); i += 2 {
		attrs = append(attrs, attribute.String(labels[i], labels[i+1]))
	}

	return attrs, nil
}
