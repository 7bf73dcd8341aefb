package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	BatchesSubmitted  = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_batches_submitted_total", Help: "Batches accepted for scoring"})
	BatchesDeduped    = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_batches_deduplicated_total", Help: "Submissions answered from an existing result"})
	RateLimitRejects  = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	WorkerSuccess     = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_tasks_completed_total", Help: "Scoring tasks completed successfully"})
	WorkerFailures    = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_tasks_failed_total", Help: "Scoring tasks that failed and will retry"})
	WorkerDeadLetter  = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_tasks_dead_letter_total", Help: "Scoring tasks moved to DLQ"})
	WordCacheHits     = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_word_cache_hits_total", Help: "Word scores served from cache"})
	WordCacheMisses   = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_word_cache_misses_total", Help: "Word scores computed from lexical data"})
	WordFetchFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "complexity_word_fetch_failures_total", Help: "Lexical lookups degraded to zero definitions"})
	QueueDepthGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "complexity_queue_depth", Help: "Ready queue depth"})
	InFlightGauge     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "complexity_tasks_inflight", Help: "Tasks currently leased"})
)

// LexiconFetchLatency tracks lexical data lookups, including failed ones.
var LexiconFetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "complexity_lexicon_fetch_seconds",
	Help:    "Latency of lexical data lookups",
	Buckets: prometheus.DefBuckets,
})

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			BatchesSubmitted,
			BatchesDeduped,
			RateLimitRejects,
			WorkerSuccess,
			WorkerFailures,
			WorkerDeadLetter,
			WordCacheHits,
			WordCacheMisses,
			WordFetchFailures,
			QueueDepthGauge,
			InFlightGauge,
			LexiconFetchLatency,
		)
	})
	return promhttp.Handler()
}
