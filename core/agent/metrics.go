package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts processed items and failed stages.
type Metrics struct {
	Items         *prometheus.CounterVec
	StageFailures *prometheus.CounterVec
}

// NewMetrics registers the coordinator counters on reg.
// A nil registerer creates unregistered counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chipnews_items_total",
			Help: "Number of processed news items by final status.",
		}, []string{"status"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chipnews_stage_failures_total",
			Help: "Number of items that failed in a stage.",
		}, []string{"stage"}),
	}
}
