// Package metrics exposes MouseTron engine and API counters through
// prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aircode610/MouseTron/pkg/memory/local"
)

const namespace = "mousetron"

// Recorder holds every MouseTron collector on its own registry. It implements
// local.Observer.
type Recorder struct {
	registry *prometheus.Registry

	executionsRecorded prometheus.Counter
	blocksRejected     prometheus.Counter
	entriesEvicted     prometheus.Counter
	recommendations    prometheus.Counter
	recordLatency      prometheus.Histogram
	blockLength        prometheus.Histogram
	eventsDropped      prometheus.Counter
	requests           *prometheus.CounterVec
}

var _ local.Observer = (*Recorder)(nil)

// NewRecorder registers the MouseTron collectors, plus the Go runtime and
// process collectors, on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		executionsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "executions_recorded_total",
			Help:      "Total executions recorded into memory",
		}),
		blocksRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "blocks_rejected_total",
			Help:      "Total executions rejected as empty or too long",
		}),
		entriesEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "frequency_evictions_total",
			Help:      "Total frequency table entries evicted",
		}),
		recommendations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "recommendations_generated_total",
			Help:      "Total recommendation sets generated",
		}),
		recordLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "record_duration_seconds",
			Help:      "Time to record one execution, persistence included",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		blockLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "block_length",
			Help:      "Distribution of recorded block lengths",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 20},
		}),
		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Total execution events dropped because the queue was full",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func (r *Recorder) ExecutionRecorded(blockLen int, elapsed time.Duration) {
	r.executionsRecorded.Inc()
	r.blockLength.Observe(float64(blockLen))
	r.recordLatency.Observe(elapsed.Seconds())
}

func (r *Recorder) BlockRejected() {
	r.blocksRejected.Inc()
}

func (r *Recorder) EntriesEvicted(n int) {
	r.entriesEvicted.Add(float64(n))
}

func (r *Recorder) RecommendationsGenerated() {
	r.recommendations.Inc()
}

// EventDropped counts an execution event dropped by the worker pool.
func (r *Recorder) EventDropped() {
	r.eventsDropped.Inc()
}

// Request counts one API request.
func (r *Recorder) Request(route string, code int) {
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Gatherer returns the underlying registry for inspection.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
