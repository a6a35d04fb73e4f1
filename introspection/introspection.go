// Package introspection implements the single, causally-ordered event log
// described in spec.md §4.8: every ChannelCreated, HandleCreated,
// HandleDestroyed, MessageEnqueued, MessageDequeued, NodeCreated and
// NodeDestroyed event the runtime emits, in the order it emits them.
package introspection

import (
	"fmt"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// Kind identifies the type of an Event.
type Kind int

const (
	ChannelCreated Kind = iota
	HandleCreated
	HandleDestroyed
	MessageEnqueued
	MessageDequeued
	NodeCreated
	NodeDestroyed
)

func (k Kind) String() string {
	switch k {
	case ChannelCreated:
		return "ChannelCreated"
	case HandleCreated:
		return "HandleCreated"
	case HandleDestroyed:
		return "HandleDestroyed"
	case MessageEnqueued:
		return "MessageEnqueued"
	case MessageDequeued:
		return "MessageDequeued"
	case NodeCreated:
		return "NodeCreated"
	case NodeDestroyed:
		return "NodeDestroyed"
	default:
		return "Unknown"
	}
}

// Event is one entry in the log. Fields not relevant to a given Kind are
// left at their zero value; Seq is assigned by the Log at append time and
// is the sole source of the total order (I6).
type Event struct {
	Seq      uint64
	Kind     Kind
	NodeID   uint64
	NodeName string
	ChanID   uint64
	ChanName string
	Handle   uint64
	Handles  []uint64
}

func (e Event) String() string {
	return fmt.Sprintf("#%d %s node=%d chan=%d handle=%d handles=%v",
		e.Seq, e.Kind, e.NodeID, e.ChanID, e.Handle, e.Handles)
}

// Log is a mutex-guarded, append-only event sequence. The zero value is
// not usable; construct with New or NewDisabled.
type Log struct {
	mu      sync.Mutex
	enabled bool
	next    uint64
	events  []Event
}

// New returns a Log that retains every event, matching the debug-build
// behavior described in spec.md §4.8.
func New() *Log {
	return &Log{enabled: true}
}

// NewDisabled returns a Log that discards every event, matching the
// production-build behavior: its internal sequence counter still advances
// on every Emit call, but no event is retained and nothing exposes the
// counter.
func NewDisabled() *Log {
	return &Log{enabled: false}
}

// append assigns the next sequence number and, if enabled, retains the
// event. It takes mu itself.
func (l *Log) append(e Event) {
	l.mu.Lock()
	e.Seq = l.next
	l.next++
	if l.enabled {
		l.events = append(l.events, e)
	}
	l.mu.Unlock()
}

func (l *Log) EmitChannelCreated(chanID uint64, chanName string) {
	l.append(Event{Kind: ChannelCreated, ChanID: chanID, ChanName: chanName})
}

func (l *Log) EmitHandleCreated(nodeID uint64, chanID, handle uint64) {
	l.append(Event{Kind: HandleCreated, NodeID: nodeID, ChanID: chanID, Handle: handle})
}

func (l *Log) EmitHandleDestroyed(nodeID uint64, chanID, handle uint64) {
	l.append(Event{Kind: HandleDestroyed, NodeID: nodeID, ChanID: chanID, Handle: handle})
}

func (l *Log) EmitMessageEnqueued(chanID uint64, handles []uint64) {
	l.append(Event{Kind: MessageEnqueued, ChanID: chanID, Handles: handles})
}

func (l *Log) EmitMessageDequeued(chanID uint64, handles []uint64) {
	l.append(Event{Kind: MessageDequeued, ChanID: chanID, Handles: handles})
}

func (l *Log) EmitNodeCreated(nodeID uint64, nodeName string) {
	l.append(Event{Kind: NodeCreated, NodeID: nodeID, NodeName: nodeName})
}

func (l *Log) EmitNodeDestroyed(nodeID uint64, nodeName string) {
	l.append(Event{Kind: NodeDestroyed, NodeID: nodeID, NodeName: nodeName})
}

// Snapshot returns a copy of every retained event, in order. Returns an
// empty slice for a disabled log.
func (l *Log) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Dump renders the current snapshot with go-spew, for debug tooling and
// crash diagnostics (silorund's introspection endpoint serves it as its
// default text form).
func (l *Log) Dump() string {
	return spew.Sdump(l.Snapshot())
}
