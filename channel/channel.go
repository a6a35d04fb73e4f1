// Package channel implements the labeled, bounded-reference FIFO message
// queue that Nodes communicate through. A Channel is never reached by
// external identity: all operations go through a Half, which is also the
// sole mechanism that changes the channel's reader/writer counts and
// therefore its orphan status.
package channel

import (
	"errors"
	"sync"

	"github.com/btcsuite/btclog"

	"github.com/silonet/silorun/label"
)

// log is this package's subsystem logger. It starts out disabled; the
// embedding binary installs a real one via UseLogger once its backend is
// up, following the same per-package convention as runtime/log.go.
var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// ID is an opaque, monotonically allocated channel identifier.
type ID uint64

// ErrClosed is returned by Enqueue when there are no live readers, and by
// Dequeue/PeekCapacity when the queue is empty and there are no live
// writers. It is the channel-level signal the runtime surfaces to callers
// as StatusChannelClosed.
var ErrClosed = errors.New("channel: closed (orphaned)")

// Direction is the immutable direction of a Half.
type Direction int

const (
	// Read identifies the reader half of a channel.
	Read Direction = iota
	// Write identifies the writer half of a channel.
	Write
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// EventSink receives channel-lifecycle notifications for the
// introspection event stream. It is implemented by the runtime and handed
// to a Channel as a weak, tolerant-of-nil back-reference: Channel must
// never assume the sink outlives it, matching the non-owning
// Channel->Runtime edge described in SPEC_FULL.md/DESIGN.md.
type EventSink interface {
	MessageEnqueued(id ID, handles []uint64)
	MessageDequeued(id ID, handles []uint64)
}

// Message is what travels through a Channel: a byte payload plus an
// ordered sequence of Halves (capabilities) handed from sender to
// receiver.
type Message struct {
	Data     []byte
	Channels []*Half
}

// Channel is a labeled, multi-reader/multi-writer FIFO queue of Messages.
// All exported methods are safe for concurrent use.
type Channel struct {
	id    ID
	name  string
	label label.Label

	mu          sync.Mutex
	messages    []*Message
	readerCount int
	writerCount int
	waiters     []*Parker

	// sink is consulted, never mutated, and tolerated as nil (e.g. in
	// tests that exercise the channel in isolation).
	sink EventSink
}

// New constructs a channel with no live halves yet; the caller is
// expected to immediately build the write and read Half that this
// Channel's existence implies (see runtime.create).
func New(id ID, name string, lbl label.Label, sink EventSink) *Channel {
	return &Channel{
		id:    id,
		name:  name,
		label: lbl.Clone(),
		sink:  sink,
	}
}

// ID returns the channel's identifier.
func (c *Channel) ID() ID { return c.id }

// Name returns the channel's debug name.
func (c *Channel) Name() string { return c.name }

// Label returns the channel's label.
func (c *Channel) Label() label.Label { return c.label }

func (c *Channel) incr(dir Direction) {
	c.mu.Lock()
	if dir == Read {
		c.readerCount++
	} else {
		c.writerCount++
	}
	c.mu.Unlock()
}

// decr removes one live half of the given direction. If the count
// reaches zero, the channel has just become orphaned in that direction,
// and any parked waiters must be woken so they observe the transition.
func (c *Channel) decr(dir Direction) {
	c.mu.Lock()
	orphaned := false
	if dir == Read {
		c.readerCount--
		orphaned = c.readerCount == 0
	} else {
		c.writerCount--
		orphaned = c.writerCount == 0
	}
	waiters := c.waiters
	c.mu.Unlock()

	if orphaned {
		log.Debugf("channel %d (%s) orphaned in %s direction, waking %d waiter(s)",
			c.id, c.name, dir, len(waiters))
		for _, p := range waiters {
			p.Wake()
		}
	}
}

// HasReaders reports whether any read half is still live.
func (c *Channel) HasReaders() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readerCount > 0
}

// HasWriters reports whether any write half is still live.
func (c *Channel) HasWriters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writerCount > 0
}

// Enqueue appends msg to the tail of the queue and wakes all waiters. It
// fails with ErrClosed if there are no live readers: writing into a
// channel nobody can ever read from is pointless and the caller should
// learn about it immediately.
func (c *Channel) Enqueue(msg *Message) error {
	c.mu.Lock()
	if c.readerCount == 0 {
		c.mu.Unlock()
		return ErrClosed
	}
	c.messages = append(c.messages, msg)
	waiters := c.drainWaitersLocked()
	handles := handleChannelIDs(msg.Channels)
	c.mu.Unlock()

	for _, p := range waiters {
		p.Wake()
	}
	if c.sink != nil {
		c.sink.MessageEnqueued(c.id, handles)
	}
	return nil
}

// Dequeue removes and returns the front message. It returns (nil, nil) if
// the queue is empty but writers remain (spec.md's "None"), and (nil,
// ErrClosed) if the queue is empty and orphaned.
func (c *Channel) Dequeue() (*Message, error) {
	c.mu.Lock()
	if len(c.messages) == 0 {
		closed := c.writerCount == 0
		c.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		return nil, nil
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.MessageDequeued(c.id, handleChannelIDs(msg.Channels))
	}
	return msg, nil
}

// PeekCapacity reports the byte and handle length of the front message
// without removing it. The bool is false when the queue is empty; err is
// ErrClosed when the queue is empty and orphaned.
func (c *Channel) PeekCapacity() (bytesLen, handlesLen int, present bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		if c.writerCount == 0 {
			return 0, 0, false, ErrClosed
		}
		return 0, 0, false, nil
	}
	front := c.messages[0]
	return len(front.Data), len(front.Channels), true, nil
}

// DequeueIfFits removes and returns the front message only if its byte
// and handle lengths fit within the given capacities. It mirrors
// PeekCapacity's semantics for the empty/orphaned cases.
func (c *Channel) DequeueIfFits(bytesCap, handlesCap int) (msg *Message, fits bool, err error) {
	c.mu.Lock()
	if len(c.messages) == 0 {
		closed := c.writerCount == 0
		c.mu.Unlock()
		if closed {
			return nil, false, ErrClosed
		}
		return nil, false, nil
	}
	front := c.messages[0]
	if len(front.Data) > bytesCap || len(front.Channels) > handlesCap {
		c.mu.Unlock()
		return nil, false, nil
	}
	c.messages = c.messages[1:]
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.MessageDequeued(c.id, handleChannelIDs(front.Channels))
	}
	return front, true, nil
}

// ReadState is the raw readability of a channel, independent of any
// label/permission check (the runtime layers PermissionDenied on top).
type ReadState int

const (
	// ReadReady means at least one message is queued.
	ReadReady ReadState = iota
	// NotReady means the queue is empty but writers remain.
	NotReady
	// Orphaned means the queue is empty and no writers remain.
	Orphaned
)

// State returns the current ReadState of the channel.
func (c *Channel) State() ReadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) > 0 {
		return ReadReady
	}
	if c.writerCount == 0 {
		return Orphaned
	}
	return NotReady
}

// AddWaiter registers p to be woken on the next Enqueue or orphan
// transition. Per spec.md §4.6, waiters must be registered *before* the
// caller re-checks channel state, so that an Enqueue racing with the
// check is never lost.
func (c *Channel) AddWaiter(p *Parker) {
	c.mu.Lock()
	c.waiters = append(c.waiters, p)
	c.mu.Unlock()
}

// WakeWaiters wakes every registered waiter without removing them from
// the list: stale waiter tokens are tolerated (spurious wakes are harmless, the caller's loop simply
// recomputes), exactly as the original Rust implementation does.
func (c *Channel) WakeWaiters() {
	c.mu.Lock()
	waiters := c.waiters
	c.mu.Unlock()
	for _, p := range waiters {
		p.Wake()
	}
}

// drainWaitersLocked returns the current waiter list. Called with mu
// held.
func (c *Channel) drainWaitersLocked() []*Parker {
	return c.waiters
}

func handleChannelIDs(halves []*Half) []uint64 {
	ids := make([]uint64, len(halves))
	for i, h := range halves {
		ids[i] = uint64(h.ChannelID())
	}
	return ids
}
