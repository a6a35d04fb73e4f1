package channel

// Half is one endpoint of a Channel. Its direction is immutable (I2).
// Constructing a Half increments the channel's corresponding
// reader/writer count; Close decrements it, possibly waking waiters if
// the count reaches zero. Half has no Go finalizer: every owner (the
// handle table, or a queued Message) must call Close exactly once when it
// gives the Half up, mirroring the explicit Drop in the Rust original.
type Half struct {
	channel   *Channel
	direction Direction
}

// NewHalf constructs a Half of the given direction over ch, incrementing
// the corresponding count.
func NewHalf(ch *Channel, dir Direction) *Half {
	ch.incr(dir)
	return &Half{channel: ch, direction: dir}
}

// Clone creates a second, independent Half over the same channel and
// direction, incrementing the count again. This is what handle_clone
// installs under the new handle value: a distinct Half, not a shared
// pointer, so that each owner's Close is independently accounted for.
func (h *Half) Clone() *Half {
	return NewHalf(h.channel, h.direction)
}

// Close releases this Half, decrementing the channel's count.
func (h *Half) Close() {
	h.channel.decr(h.direction)
}

// Direction returns the half's immutable direction.
func (h *Half) Direction() Direction { return h.direction }

// ChannelID returns the identifier of the channel this half refers to.
func (h *Half) ChannelID() ID { return h.channel.id }

// Channel returns the underlying Channel. Runtime code uses this to reach
// Enqueue/Dequeue/Label/etc; it is not exported for use outside the
// runtime package's IFC-checked call sites.
func (h *Half) Channel() *Channel { return h.channel }
