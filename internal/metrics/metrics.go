package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Placement outcomes
const (
	OutcomePlaced  = "placed"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
	OutcomeFatal   = "fatal"
)

type Metrics struct {
	Placements        *prometheus.CounterVec
	PlacementDuration prometheus.Histogram
	EventsPublished   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "orders",
		Name:      "placements_total",
		Help:      "Order placements by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookstore",
		Subsystem: "orders",
		Name:      "placement_duration_seconds",
		Help:      "Time spent placing an order, validation included.",
		Buckets:   prometheus.DefBuckets,
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "orders",
		Name:      "outbox_events_total",
		Help:      "Outbox events handled by the publisher, by result.",
	}, []string{"result"})

	reg.MustRegister(placements, duration, published)
	return &Metrics{Placements: placements, PlacementDuration: duration, EventsPublished: published}
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
