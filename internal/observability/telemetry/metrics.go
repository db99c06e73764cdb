package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	CallsPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxdial_calls_placed_total",
		Help: "Outbound calls placed, by test mode",
	}, []string{"test_mode"})

	WebhookTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxdial_webhook_turns_total",
		Help: "Webhook invocations handled, by state machine branch",
	}, []string{"state"})

	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxdial_classifications_total",
		Help: "Transcript classifications, by outcome",
	}, []string{"outcome"})

	ActiveCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxdial_active_calls",
		Help: "Calls currently believed to be in flight",
	})

	CallContexts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxdial_call_contexts",
		Help: "Call contexts held in the store",
	})

	// Infrastructure metrics
	SynthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxdial_synthesis_latency_seconds",
		Help:    "Speech synthesis latency",
		Buckets: prometheus.DefBuckets,
	})

	SynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxdial_synthesis_total",
		Help: "Speech synthesis attempts, by result",
	}, []string{"result"})

	AudioCacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxdial_audio_cache_requests_total",
		Help: "Audio retrieval requests, by cache result",
	}, []string{"result"})
)
