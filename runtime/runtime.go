// Package runtime implements the confidential-compute execution core:
// channel creation/IO, the per-node handle table, IFC enforcement, the
// multi-channel wait protocol, and node lifecycle management. Everything
// a node touches arrives through a *Proxy (runtime/proxy.go); this file
// holds the shared Runtime object the proxies and internal operations
// all operate on.
package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/silonet/silorun/auxserver"
	"github.com/silonet/silorun/channel"
	"github.com/silonet/silorun/introspection"
	"github.com/silonet/silorun/label"
	"github.com/silonet/silorun/metrics"
	"github.com/silonet/silorun/node"
)

// nodeInfo is the runtime's private bookkeeping record for one node,
// spec.md's NodeInfo. All access to its fields (including its handle
// table) is made under Runtime.mu.
type nodeInfo struct {
	id        uint64
	name      string
	nodeType  string
	label     label.Label
	privilege label.Privilege
	handles   map[uint64]*channel.Half
	stopper   *nodeStopper
}

// nodeStopper is spec.md's NodeStopper: it owns the one cooperative
// termination signal for a node's goroutine, plus the means to join it.
type nodeStopper struct {
	terminate chan struct{}
	done      chan struct{}
}

// Runtime is the shared, lock-guarded object every node's proxy and
// every runtime-internal operation mutates. The zero value is not
// usable; construct with New.
type Runtime struct {
	mu          sync.RWMutex
	nodeInfos   map[uint64]*nodeInfo
	nextNodeID  uint64
	nextChanID  uint64
	terminating atomic.Bool

	factory   node.Factory
	events    *introspection.Log
	metrics   *metrics.Registry
	auxiliary *auxserver.Supervisor
}

// Config bundles the Runtime's external collaborators. Events and
// Metrics may be left nil; a nil Events log is replaced by
// introspection.NewDisabled(), which retains nothing, and a nil
// *metrics.Registry is a documented no-op receiver.
type Config struct {
	Factory   node.Factory
	Events    *introspection.Log
	Metrics   *metrics.Registry
	Auxiliary *auxserver.Supervisor
}

// New constructs an empty Runtime: no nodes, no channels, not
// terminating.
func New(cfg Config) *Runtime {
	events := cfg.Events
	if events == nil {
		events = introspection.NewDisabled()
	}
	aux := cfg.Auxiliary
	if aux == nil {
		aux = auxserver.New()
	}
	return &Runtime{
		nodeInfos: make(map[uint64]*nodeInfo),
		factory:   cfg.Factory,
		events:    events,
		metrics:   cfg.Metrics,
		auxiliary: aux,
	}
}

// Events returns the runtime's introspection log, for tooling that wants
// to render or dump it (e.g. silorund's introspection endpoint).
func (r *Runtime) Events() *introspection.Log {
	return r.events
}

// IsTerminating reports whether Stop has been called.
func (r *Runtime) IsTerminating() bool {
	return r.terminating.Load()
}

func (r *Runtime) nextChannelID() channel.ID {
	return channel.ID(atomic.AddUint64(&r.nextChanID, 1))
}

func (r *Runtime) nextNodeIDValue() uint64 {
	return atomic.AddUint64(&r.nextNodeID, 1)
}

// runtimeSink adapts a Runtime's introspection log to channel.EventSink,
// the narrow interface a *channel.Channel calls back into. It is the
// weak, eventing-only edge described in spec.md §9 ("cyclic references
// channel<->runtime"): the channel never holds a strong reference to the
// Runtime, only to this small adapter value.
type runtimeSink struct {
	events  *introspection.Log
	metrics *metrics.Registry
}

func (s runtimeSink) MessageEnqueued(id channel.ID, handles []uint64) {
	s.events.EmitMessageEnqueued(uint64(id), handles)
	s.metrics.MessageSent()
}

func (s runtimeSink) MessageDequeued(id channel.ID, handles []uint64) {
	s.events.EmitMessageDequeued(uint64(id), handles)
	s.metrics.MessageReceived()
}

func (r *Runtime) sink() channel.EventSink {
	return runtimeSink{events: r.events, metrics: r.metrics}
}
