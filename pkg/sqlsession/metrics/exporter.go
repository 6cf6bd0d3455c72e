package metrics

import (
	"context"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider bundles the meter used by a Manager with the registry its values are exported to.
type Provider struct {
	Meter    metric.Meter
	Registry *prometheus.Registry

	provider *sdkmetric.MeterProvider
}

// NewPrometheusProvider wires an OpenTelemetry meter provider to a fresh Prometheus registry.
func NewPrometheusProvider(name string) (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry), otelprom.WithoutTargetInfo(), otelprom.WithoutScopeInfo())
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Provider{
		Meter:    mp.Meter(name),
		Registry: registry,
		provider: mp,
	}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return GetHandler(p.Registry)
}

// WriteText writes the current values in the Prometheus text format.
func (p *Provider) WriteText(w io.Writer) error {
	families, err := p.Registry.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}

// Shutdown flushes and stops the underlying meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

// GetHandler returns a /metrics handler for the given gatherer.
func GetHandler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	return mux
}
