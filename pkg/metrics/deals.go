package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DealMetrics records counters for deal lifecycle operations and a gauge
// for active realtime subscriptions.
type DealMetrics struct {
	created       prometheus.Counter
	decisions     *prometheus.CounterVec
	outboxEvents  *prometheus.CounterVec
	subscriptions *prometheus.GaugeVec
}

// NewDealMetrics registers the deal metrics on the provided registerer.
func NewDealMetrics(reg prometheus.Registerer) *DealMetrics {
	if reg == nil {
		return &DealMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deals_created_total",
		Help: "Deals posted by farmers.",
	})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_decisions_total",
		Help: "Dealer decisions on open deals.",
	}, []string{"action", "outcome"})
	outboxEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_total",
		Help: "Outbox events by event type and publish outcome.",
	}, []string{"event", "outcome"})
	subscriptions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "realtime_subscriptions",
		Help: "Active server-sent event subscriptions by stream.",
	}, []string{"stream"})
	reg.MustRegister(created, decisions, outboxEvents, subscriptions)
	return &DealMetrics{
		created:       created,
		decisions:     decisions,
		outboxEvents:  outboxEvents,
		subscriptions: subscriptions,
	}
}

// IncCreated increments the created-deal counter.
func (m *DealMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncDecision increments the decision counter for the given action and outcome.
func (m *DealMetrics) IncDecision(action, outcome string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// IncOutboxEvent increments the outbox counter for the given event type.
func (m *DealMetrics) IncOutboxEvent(event, outcome string) {
	if m == nil || m.outboxEvents == nil {
		return
	}
	m.outboxEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// SubscriptionOpened bumps the subscription gauge for the named stream.
func (m *DealMetrics) SubscriptionOpened(stream string) {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.WithLabelValues(normalizeLabel(stream)).Inc()
}

// SubscriptionClosed drops the subscription gauge for the named stream.
func (m *DealMetrics) SubscriptionClosed(stream string) {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.WithLabelValues(normalizeLabel(stream)).Dec()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
