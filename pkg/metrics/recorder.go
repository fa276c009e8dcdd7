package metrics

import (
	"time"

	"github.com/rs/zerolog"
)

// Observation é o resultado de uma invocação a ser registrado.
type Observation struct {
	Table    string
	Outcome  string
	Kind     string // vazio em caso de sucesso
	Duration time.Duration
}

// Recorder traduz observações em chamadas ao Provider.
// Falhas de envio são apenas logadas; métricas nunca alteram o resultado da invocação.
type Recorder struct {
	provider Provider
	logger   zerolog.Logger
}

func NewRecorder(provider Provider, logger zerolog.Logger) *Recorder {
	return &Recorder{provider: provider, logger: logger}
}

func (r *Recorder) Record(obs Observation) {
	if r == nil || r.provider == nil {
		return
	}

	tags := []string{"outcome:" + obs.Outcome}
	if obs.Table != "" {
		tags = append(tags, "table:"+obs.Table)
	}
	if obs.Kind != "" {
		tags = append(tags, "kind:"+obs.Kind)
	}

	if err := r.provider.Count(MetricInvocations, 1, tags); err != nil {
		r.logger.Warn().Err(err).Str("metric", MetricInvocations).Msg("failed to send metric")
	}
	ms := float64(obs.Duration) / float64(time.Millisecond)
	if err := r.provider.Histogram(MetricLatency, ms, tags); err != nil {
		r.logger.Warn().Err(err).Str("metric", MetricLatency).Msg("failed to send metric")
	}
}
