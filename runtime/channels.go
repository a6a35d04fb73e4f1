package runtime

import (
	"github.com/silonet/silorun/channel"
	"github.com/silonet/silorun/label"
)

// node resolves nodeID to its nodeInfo. A missing id is a broken
// contract between the façade and the core (spec.md §7): the façade
// guarantees a valid id for every call, so this is a fatal programmer
// error, not a reportable status.
func (r *Runtime) node(nodeID uint64) *nodeInfo {
	n, ok := r.nodeInfos[nodeID]
	if !ok {
		panic("runtime: unknown node id (broken façade contract)")
	}
	return n
}

// Create implements spec.md §4.5 create: allocates a channel labeled
// lbl and installs a fresh write/read handle pair in the caller's table.
func (r *Runtime) Create(nodeID uint64, name string, lbl label.Label, dg Downgrade) (writeHandle, readHandle uint64, err error) {
	if r.IsTerminating() {
		return 0, 0, errTerminated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.node(nodeID)
	if err := validateCanWrite(n, label.PublicUntrusted(), dg); err != nil {
		return 0, 0, err
	}
	if err := validateCanWrite(n, lbl, dg); err != nil {
		return 0, 0, err
	}

	id := r.nextChannelID()
	ch := channel.New(id, name, lbl, r.sink())
	r.events.EmitChannelCreated(uint64(id), name)
	r.metrics.ChannelCreated()

	w := channel.NewHalf(ch, channel.Write)
	rd := channel.NewHalf(ch, channel.Read)
	writeHandle = r.newHandle(n, w)
	readHandle = r.newHandle(n, rd)
	return writeHandle, readHandle, nil
}

// Write implements spec.md §4.5 write.
func (r *Runtime) Write(nodeID, writeHandle uint64, msg NodeMessage, dg Downgrade) error {
	r.mu.RLock()
	n := r.node(nodeID)

	half, err := lookupWrite(n, writeHandle)
	if err != nil {
		r.mu.RUnlock()
		return err
	}
	ch := half.Channel()
	if err := validateCanWrite(n, ch.Label(), dg); err != nil {
		r.mu.RUnlock()
		return err
	}

	halves := make([]*channel.Half, 0, len(msg.Handles))
	for _, h := range msg.Handles {
		embedded, lookupErr := lookup(n, h)
		if lookupErr != nil {
			r.mu.RUnlock()
			closeAll(halves)
			return lookupErr
		}
		halves = append(halves, embedded.Clone())
	}
	r.mu.RUnlock()

	err = ch.Enqueue(&channel.Message{Data: msg.Data, Channels: halves})
	if err != nil {
		// The message never entered the queue, so nothing owns these
		// cloned halves; close them here or their incremented
		// reader/writer counts on the embedded channels leak forever.
		closeAll(halves)
	}
	if err == channel.ErrClosed {
		return errChannelClosed
	}
	return err
}

func closeAll(halves []*channel.Half) {
	for _, h := range halves {
		h.Close()
	}
}

// Read implements spec.md §4.5 read: returns (nil, nil, nil) for "queue
// empty, channel open" (None), a non-nil error for ChannelClosed/
// PermissionDenied/BadHandle, and otherwise the dequeued message with
// every embedded half installed as a fresh handle in the caller's own
// table.
func (r *Runtime) Read(nodeID, readHandle uint64, dg Downgrade) (*NodeMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.node(nodeID)
	half, err := lookupRead(n, readHandle)
	if err != nil {
		return nil, err
	}
	ch := half.Channel()
	if err := validateCanRead(n, ch.Label(), dg); err != nil {
		return nil, err
	}

	msg, err := ch.Dequeue()
	if err == channel.ErrClosed {
		return nil, errChannelClosed
	}
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	handles := make([]uint64, len(msg.Channels))
	for i, embedded := range msg.Channels {
		handles[i] = r.newHandle(n, embedded)
	}
	return &NodeMessage{Data: msg.Data, Handles: handles}, nil
}

// TryRead implements spec.md §4.5 try_read. fits is false with
// needsBytes/needsHandles set when the message doesn't fit; fits is
// false with needsBytes==0 when the queue was simply empty (None).
func (r *Runtime) TryRead(nodeID, readHandle uint64, bytesCap, handlesCap int, dg Downgrade) (msg *NodeMessage, fits bool, needsBytes, needsHandles int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.node(nodeID)
	half, err := lookupRead(n, readHandle)
	if err != nil {
		return nil, false, 0, 0, err
	}
	ch := half.Channel()
	if err := validateCanRead(n, ch.Label(), dg); err != nil {
		return nil, false, 0, 0, err
	}

	b, h, present, err := ch.PeekCapacity()
	if err == channel.ErrClosed {
		return nil, false, 0, 0, errChannelClosed
	}
	if err != nil {
		return nil, false, 0, 0, err
	}
	if !present {
		return nil, false, 0, 0, nil
	}
	if b > bytesCap || h > handlesCap {
		return nil, false, b, h, nil
	}

	raw, ok, err := ch.DequeueIfFits(bytesCap, handlesCap)
	if err != nil || !ok || raw == nil {
		return nil, false, 0, 0, err
	}
	handles := make([]uint64, len(raw.Channels))
	for i, embedded := range raw.Channels {
		handles[i] = r.newHandle(n, embedded)
	}
	return &NodeMessage{Data: raw.Data, Handles: handles}, true, 0, 0, nil
}

// Close implements spec.md §4.5 close: removes handle from the caller's
// table and releases the underlying half.
func (r *Runtime) Close(nodeID, handle uint64) error {
	r.mu.Lock()
	n := r.node(nodeID)
	half, err := r.dropHandle(n, handle)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	half.Close()
	return nil
}

// ChannelStatus implements spec.md §4.5 channel_status for a single read
// handle, returning a Code rather than an error: permission denial is a
// reported status here, not an aborted call, so wait can return a
// per-channel verdict without failing the whole call.
func (r *Runtime) ChannelStatus(nodeID, handle uint64, dg Downgrade) Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := r.node(nodeID)
	return r.channelStatusLocked(n, handle, dg)
}

// channelStatusLocked is ChannelStatus's core, sharing its per-half
// logic with Wait (runtime/wait.go). Called with r.mu held (read or
// write).
func (r *Runtime) channelStatusLocked(n *nodeInfo, handle uint64, dg Downgrade) Code {
	half, err := lookupRead(n, handle)
	if err != nil {
		return InvalidChannel
	}
	return channelStatusForHalf(n, half, dg)
}
