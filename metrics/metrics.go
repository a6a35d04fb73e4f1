// Package metrics exposes the runtime's Prometheus instrumentation: node
// counts by type, and cumulative counters for channels, handles and
// messages. Serving /metrics over HTTP is peripheral (spec.md §1) and
// lives in the auxserver-backed exposition server in cmd/silorund; this
// package only owns the collectors themselves.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every collector the runtime updates. A nil *Registry
// is valid and every method becomes a no-op, so tests and embeddings
// that don't care about metrics can skip wiring one up.
type Registry struct {
	NodesByType   *prometheus.GaugeVec
	ChannelsTotal prometheus.Counter
	HandlesTotal  prometheus.Counter
	MessagesSent  prometheus.Counter
	MessagesRecv  prometheus.Counter
}

// NewRegistry constructs a Registry and registers its collectors with
// reg. Passing prometheus.NewRegistry() keeps the runtime's metrics out
// of the default global registry, matching how a library (rather than a
// standalone binary) ought to behave.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		NodesByType: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "silorun",
			Name:      "nodes",
			Help:      "Number of live nodes, labeled by node_type.",
		}, []string{"node_type"}),
		ChannelsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "silorun",
			Name:      "channels_created_total",
			Help:      "Total channels ever created.",
		}),
		HandlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "silorun",
			Name:      "handles_created_total",
			Help:      "Total handles ever allocated.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "silorun",
			Name:      "messages_sent_total",
			Help:      "Total messages enqueued across all channels.",
		}),
		MessagesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "silorun",
			Name:      "messages_received_total",
			Help:      "Total messages dequeued across all channels.",
		}),
	}
	reg.MustRegister(r.NodesByType, r.ChannelsTotal, r.HandlesTotal, r.MessagesSent, r.MessagesRecv)
	return r
}

func (r *Registry) NodeCreated(nodeType string) {
	if r == nil {
		return
	}
	r.NodesByType.WithLabelValues(nodeType).Inc()
}

func (r *Registry) NodeDestroyed(nodeType string) {
	if r == nil {
		return
	}
	r.NodesByType.WithLabelValues(nodeType).Dec()
}

func (r *Registry) ChannelCreated() {
	if r == nil {
		return
	}
	r.ChannelsTotal.Inc()
}

func (r *Registry) HandleCreated() {
	if r == nil {
		return
	}
	r.HandlesTotal.Inc()
}

func (r *Registry) MessageSent() {
	if r == nil {
		return
	}
	r.MessagesSent.Inc()
}

func (r *Registry) MessageReceived() {
	if r == nil {
		return
	}
	r.MessagesRecv.Inc()
}
