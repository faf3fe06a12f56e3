package pubsub

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts broker traffic. A nil *Metrics records nothing.
type Metrics struct {
	published      *prometheus.CounterVec
	publishFailure *prometheus.CounterVec
	consumedTotal  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maxwire_packets_published_total",
			Help: "Packets published to the broker, by payload kind.",
		}, []string{"kind"}),
		publishFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maxwire_packets_publish_failures_total",
			Help: "Packets that could not be encoded or published, by payload kind.",
		}, []string{"kind"}),
		consumedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maxwire_deliveries_consumed_total",
			Help: "Deliveries settled by consumers, by consumer and outcome.",
		}, []string{"consumer", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.published, m.publishFailure, m.consumedTotal)
	}
	return m
}

func (m *Metrics) publishResult(kind string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.publishFailure.WithLabelValues(kind).Inc()
		return
	}
	m.published.WithLabelValues(kind).Inc()
}

func (m *Metrics) consumed(consumer string, o outcome) {
	if m == nil {
		return
	}
	m.consumedTotal.WithLabelValues(consumer, o.String()).Inc()
}
