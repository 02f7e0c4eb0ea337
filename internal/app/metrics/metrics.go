package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mock_server"

const (
	OutcomeMatched  = "matched"
	OutcomeNotFound = "not_found"
)

// Recorder owns the collectors of the server. A nil *Recorder is valid and
// records nothing, so components can take one unconditionally.
type Recorder struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	parseErrors prometheus.Counter
	reloads     prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests served, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time to answer a request, including simulated delay.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixture_parse_errors_total",
			Help:      "Fixture files skipped because they could not be parsed.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reloads triggered by changes in the fixture directory.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.duration,
		r.parseErrors,
		r.reloads,
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveRequest(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(outcome).Inc()
	r.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (r *Recorder) FixtureParseFailed() {
	if r == nil {
		return
	}
	r.parseErrors.Inc()
}

func (r *Recorder) ReloadSignaled() {
	if r == nil {
		return
	}
	r.reloads.Inc()
}
