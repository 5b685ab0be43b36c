package observability

import (
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const (
	attemptsMetric = "advisor_provider_attempts_total"
	latencyMetric  = "advisor_provider_attempt_duration_seconds"
)

// Metrics collects provider attempt metrics
type Metrics interface {
	RecordAttempt(provider, outcome string, latency time.Duration)
}

// ProviderStats is a point-in-time view of one provider's counters
type ProviderStats struct {
	Provider     string  `json:"provider"`
	Attempts     int64   `json:"attempts"`
	Successes    int64   `json:"successes"`
	Failures     int64   `json:"failures"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// AttemptStats records provider attempts as Prometheus metrics on its own registry
type AttemptStats struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewAttemptStats creates a registry with the attempt metrics and the Go runtime collectors
func NewAttemptStats() *AttemptStats {
	s := &AttemptStats{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: attemptsMetric,
			Help: "LLM provider invocations by outcome.",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    latencyMetric,
			Help:    "LLM provider invocation latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"provider"}),
	}

	s.registry.MustRegister(
		s.attempts,
		s.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// RecordAttempt implements Metrics
func (s *AttemptStats) RecordAttempt(provider, outcome string, latency time.Duration) {
	s.attempts.WithLabelValues(provider, outcome).Inc()
	s.latency.WithLabelValues(provider).Observe(latency.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (s *AttemptStats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Snapshot summarizes the attempt metrics per provider, sorted by name
func (s *AttemptStats) Snapshot() []ProviderStats {
	families, err := s.registry.Gather()
	if err != nil {
		return nil
	}

	byProvider := make(map[string]*ProviderStats)
	get := func(name string) *ProviderStats {
		ps, ok := byProvider[name]
		if !ok {
			ps = &ProviderStats{Provider: name}
			byProvider[name] = ps
		}
		return ps
	}

	for _, mf := range families {
		switch mf.GetName() {
		case attemptsMetric:
			for _, m := range mf.GetMetric() {
				var provider, outcome string
				for _, lp := range m.GetLabel() {
					switch lp.GetName() {
					case "provider":
						provider = lp.GetValue()
					case "outcome":
						outcome = lp.GetValue()
					}
				}

				n := int64(m.GetCounter().GetValue())
				ps := get(provider)
				ps.Attempts += n
				switch outcome {
				case OutcomeSuccess:
					ps.Successes += n
				case OutcomeFailure:
					ps.Failures += n
				}
			}
		case latencyMetric:
			for _, m := range mf.GetMetric() {
				var provider string
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "provider" {
						provider = lp.GetValue()
					}
				}

				h := m.GetHistogram()
				if h.GetSampleCount() > 0 {
					get(provider).AvgLatencyMs = h.GetSampleSum() * 1000 / float64(h.GetSampleCount())
				}
			}
		}
	}

	out := make([]ProviderStats, 0, len(byProvider))
	for _, ps := range byProvider {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// NopMetrics discards everything
type NopMetrics struct{}

// RecordAttempt implements Metrics
func (NopMetrics) RecordAttempt(string, string, time.Duration) {}
