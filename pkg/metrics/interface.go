package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por outro backend sem alterar a lógica da função.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas por invocação.
const (
	MetricInvocations = "delete_record.invocations"
	MetricLatency     = "delete_record.latency_ms"
)

// Outcome de uma invocação.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
