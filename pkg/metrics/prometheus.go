package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	resolutions *prometheus.CounterVec
	tierSkips   *prometheus.CounterVec
	cacheHits   prometheus.Counter
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		resolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_resolutions_total",
				Help: "Quote resolutions by producing tier and staleness",
			},
			[]string{"source", "stale"},
		),
		tierSkips: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_tier_skips_total",
				Help: "Upstream tiers skipped during the cascade",
			},
			[]string{"tier", "reason"},
		),
		cacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_hits_total",
				Help: "Quote requests served from a fresh cache entry",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_upstream_duration_seconds",
				Help:    "Duration of upstream provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
	}
}

// RecordResolution records a completed resolution.
func (r *Recorder) RecordResolution(source string, stale bool) {
	r.resolutions.WithLabelValues(source, strconv.FormatBool(stale)).Inc()
}

// RecordCacheHit records a fresh-cache short circuit.
func (r *Recorder) RecordCacheHit() {
	r.cacheHits.Inc()
}

// RecordTierSkip records a tier soft failure.
func (r *Recorder) RecordTierSkip(tier, reason string) {
	r.tierSkips.WithLabelValues(tier, reason).Inc()
}

// RecordUpstreamLatency records upstream call latency in seconds.
func (r *Recorder) RecordUpstreamLatency(function string, seconds float64) {
	r.latency.WithLabelValues(function).Observe(seconds)
}
