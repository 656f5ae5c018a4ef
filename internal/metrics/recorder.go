// Package metrics tracks per-provider health and spend. The Recorder is
// an explicit instance injected into the orchestrator and chains (never
// ambient global state) and mirrors its counters into Prometheus so the
// same numbers appear on /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderStats is the snapshot of one provider's counters.
type ProviderStats struct {
	SuccessCount  int64         `json:"successCount"`
	FailureCount  int64         `json:"failureCount"`
	TotalCostUSD  float64       `json:"totalCostUsd"`
	AvgLatency    time.Duration `json:"avgLatencyNs"`
	totalLatency  time.Duration
	observedCalls int64
}

// Recorder accumulates provider counters. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*ProviderStats

	promSuccess *prometheus.CounterVec
	promFailure *prometheus.CounterVec
	promCost    *prometheus.CounterVec
	promLatency *prometheus.HistogramVec
}

// NewRecorder builds a Recorder and registers its collectors with reg.
// Pass prometheus.NewRegistry() in tests to avoid collisions.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		stats: make(map[string]*ProviderStats),
		promSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saga_provider_success_total",
			Help: "Total successful provider calls, partitioned by provider.",
		}, []string{"provider"}),
		promFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saga_provider_failure_total",
			Help: "Total failed provider calls, partitioned by provider.",
		}, []string{"provider"}),
		promCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saga_provider_estimated_cost_usd_total",
			Help: "Estimated cumulative provider spend in USD.",
		}, []string{"provider"}),
		promLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "saga_provider_call_duration_seconds",
			Help:    "Provider call durations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg != nil {
		reg.MustRegister(r.promSuccess, r.promFailure, r.promCost, r.promLatency)
	}
	return r
}

func (r *Recorder) provider(name string) *ProviderStats {
	s, ok := r.stats[name]
	if !ok {
		s = &ProviderStats{}
		r.stats[name] = s
	}
	return s
}

// RecordSuccess counts a successful call and folds its latency into the
// provider's running average.
func (r *Recorder) RecordSuccess(provider string, elapsed time.Duration) {
	r.mu.Lock()
	s := r.provider(provider)
	s.SuccessCount++
	s.observe(elapsed)
	r.mu.Unlock()

	r.promSuccess.WithLabelValues(provider).Inc()
	r.promLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordFailure counts a failed call. Failed calls still contribute
// latency: a slow failure is a health signal too.
func (r *Recorder) RecordFailure(provider string, elapsed time.Duration) {
	r.mu.Lock()
	s := r.provider(provider)
	s.FailureCount++
	s.observe(elapsed)
	r.mu.Unlock()

	r.promFailure.WithLabelValues(provider).Inc()
	r.promLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordCost accumulates estimated spend for a provider.
func (r *Recorder) RecordCost(provider string, usd float64) {
	if usd <= 0 {
		return
	}
	r.mu.Lock()
	r.provider(provider).TotalCostUSD += usd
	r.mu.Unlock()

	r.promCost.WithLabelValues(provider).Add(usd)
}

func (s *ProviderStats) observe(elapsed time.Duration) {
	s.observedCalls++
	s.totalLatency += elapsed
	s.AvgLatency = s.totalLatency / time.Duration(s.observedCalls)
}

// Snapshot returns a copy of every provider's counters.
func (r *Recorder) Snapshot() map[string]ProviderStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]ProviderStats, len(r.stats))
	for name, s := range r.stats {
		out[name] = *s
	}
	return out
}
