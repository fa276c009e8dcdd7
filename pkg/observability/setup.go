package observability

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/raywall/delete-record-function/pkg/config"
	"github.com/raywall/delete-record-function/pkg/metrics"
)

const defaultNamespace = "delete_record_function."

// NoopProvider é um placeholder para quando métricas estão desabilitadas.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }
func (n *NoopProvider) Close() error                                              { return nil }

// DatadogProvider adapta a lib oficial do Datadog para nossa interface.
type DatadogProvider struct {
	client statsd.ClientInterface
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

// Close faz flush do buffer do statsd. Chamado no shutdown do processo.
func (d *DatadogProvider) Close() error {
	return d.client.Close()
}

// Provider é o metrics.Provider com ciclo de vida.
type Provider interface {
	metrics.Provider
	Close() error
}

// SetupMetrics inicializa o provedor correto baseado no YAML.
// Toda métrica leva a tag service:<nome do serviço>.
func SetupMetrics(cfg config.MetricsConf, service string) (Provider, error) {
	if !cfg.Datadog.Enabled {
		return &NoopProvider{}, nil
	}

	namespace := cfg.Datadog.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}

	opts := []statsd.Option{
		statsd.WithNamespace(namespace),
	}
	if service != "" {
		opts = append(opts, statsd.WithTags([]string{"service:" + service}))
	}

	client, err := statsd.New(cfg.Datadog.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: datadog statsd: %w", err)
	}

	return &DatadogProvider{client: client}, nil
}
