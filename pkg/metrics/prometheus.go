package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	remoteCalls    *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	submits        *prometheus.CounterVec
	staleDiscards  prometheus.Counter
	activeSessions prometheus.Gauge
}

// New registers the collectors on reg (prometheus.DefaultRegisterer in production).
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		remoteCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsimpact_remote_calls_total",
				Help: "Outbound calls to the price, news and sentiment services",
			},
			[]string{"op", "result"},
		),
		remoteLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsimpact_remote_call_duration_seconds",
				Help:    "Duration of outbound calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		submits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsimpact_submits_total",
				Help: "Dashboard submissions by outcome",
			},
			[]string{"outcome"},
		),
		staleDiscards: f.NewCounter(prometheus.CounterOpts{
			Name: "newsimpact_stale_results_discarded_total",
			Help: "Submit results dropped because a newer submit had started",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "newsimpact_active_sessions",
			Help: "Dashboard sessions currently held in memory",
		}),
	}
}

// RecordRemoteCall records one outbound call.
func (r *Recorder) RecordRemoteCall(op string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.remoteCalls.WithLabelValues(op, result).Inc()
	r.remoteLatency.WithLabelValues(op).Observe(seconds)
}

// RecordSubmit records a submit outcome (invalid, failed, success).
func (r *Recorder) RecordSubmit(outcome string) {
	r.submits.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordStaleDiscard() { r.staleDiscards.Inc() }

func (r *Recorder) SetActiveSessions(n int) { r.activeSessions.Set(float64(n)) }

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordRemoteCall(string, float64, error) {}
func (Nop) RecordSubmit(string)                     {}
func (Nop) RecordStaleDiscard()                     {}
func (Nop) SetActiveSessions(int)                   {}
