package metrics

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hivehr",
		Subsystem: "hierarchy",
		Name:      "transitions_total",
		Help:      "Role and department transitions, by transition kind and outcome.",
	}, []string{"kind", "outcome"})

	exchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hivehr",
		Subsystem: "hierarchy",
		Name:      "exchanges_total",
		Help:      "Paired exchange operations, by exchange kind and outcome.",
	}, []string{"kind", "outcome"})

	transitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hivehr",
		Subsystem: "hierarchy",
		Name:      "transition_duration_seconds",
		Help:      "Wall time of a transition transaction, including row locking.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})
)

func ObserveTransition(kind, outcome string, seconds float64) {
	transitionsTotal.WithLabelValues(kind, outcome).Inc()
	transitionDuration.WithLabelValues(kind).Observe(seconds)
}

func ObserveExchange(kind, outcome string) {
	exchangesTotal.WithLabelValues(kind, outcome).Inc()
}

// Controller exposes the Prometheus scrape endpoint.
type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) Key() string {
	return "/metrics"
}

func (c *Controller) Register(r *mux.Router) {
	r.Handle("/metrics", promhttp.Handler())
}
