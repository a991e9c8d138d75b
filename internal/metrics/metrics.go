// Package metrics exposes workflow outcome counters for the arsenal client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arsenal"

// Recorder owns a private registry so several clients (and tests) can
// coexist in one process.
type Recorder struct {
	registry *prometheus.Registry

	syncTotal        *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	capabilities     prometheus.Gauge
	inFlight         *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		syncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_total",
				Help:      "Roster synchronizations by result",
			},
			[]string{"result"},
		),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Mission submissions by workflow and result",
			},
			[]string{"workflow", "result"},
		),
		capabilities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "capabilities",
				Help:      "Entries in the authoritative capability list",
			},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Remote calls currently in flight by workflow",
			},
			[]string{"workflow"},
		),
	}
	r.registry.MustRegister(r.syncTotal, r.submissionsTotal, r.capabilities, r.inFlight)
	return r
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (r *Recorder) SyncCompleted(ok bool, capabilities int) {
	r.syncTotal.WithLabelValues(result(ok)).Inc()
	if ok {
		r.capabilities.Set(float64(capabilities))
	}
}

func (r *Recorder) SubmissionCompleted(workflow string, ok bool) {
	r.submissionsTotal.WithLabelValues(workflow, result(ok)).Inc()
}

func (r *Recorder) InFlight(workflow string, delta int) {
	r.inFlight.WithLabelValues(workflow).Add(float64(delta))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
