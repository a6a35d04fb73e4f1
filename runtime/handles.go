package runtime

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/silonet/silorun/channel"
)

// randomHandle draws a uniform random 64-bit value. Handle allocation
// must not use a low-entropy counter (spec.md §9): a predictable handle
// lets one node guess another's handle and forge access to its channel
// halves, defeating the whole capability model.
func randomHandle() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing indicates a broken host entropy source;
		// there is no safe fallback that preserves forgery resistance.
		panic("runtime: crypto/rand unavailable: " + err.Error())
	}
	return binary.BigEndian.Uint64(buf[:])
}

// newHandle allocates a fresh handle value in n's table pointing at
// half, retrying on collision, and emits HandleCreated. Called with
// r.mu held for writing.
func (r *Runtime) newHandle(n *nodeInfo, half *channel.Half) uint64 {
	var h uint64
	for {
		h = randomHandle()
		if _, exists := n.handles[h]; !exists {
			break
		}
	}
	n.handles[h] = half
	r.events.EmitHandleCreated(n.id, uint64(half.ChannelID()), h)
	r.metrics.HandleCreated()
	return h
}

// dropHandle removes handle from n's table and returns the half that
// was installed there, so the caller can Close it (outside the lock:
// Close may wake waiters, which must not happen while r.mu is held).
// Called with r.mu held for writing.
func (r *Runtime) dropHandle(n *nodeInfo, handle uint64) (*channel.Half, error) {
	half, ok := n.handles[handle]
	if !ok {
		return nil, errBadHandle
	}
	delete(n.handles, handle)
	r.events.EmitHandleDestroyed(n.id, uint64(half.ChannelID()), handle)
	return half, nil
}

// lookup resolves handle in n's table with no direction constraint.
// Called with r.mu held for reading (or writing).
func lookup(n *nodeInfo, handle uint64) (*channel.Half, error) {
	half, ok := n.handles[handle]
	if !ok {
		return nil, errBadHandle
	}
	return half, nil
}

// lookupDirection resolves handle and additionally requires it match
// dir, yielding BadHandle on a direction mismatch just as it would for a
// missing handle: the caller never learns whether a wrong-direction
// handle exists at all.
func lookupDirection(n *nodeInfo, handle uint64, dir channel.Direction) (*channel.Half, error) {
	half, err := lookup(n, handle)
	if err != nil {
		return nil, err
	}
	if half.Direction() != dir {
		return nil, errBadHandle
	}
	return half, nil
}

func lookupRead(n *nodeInfo, handle uint64) (*channel.Half, error) {
	return lookupDirection(n, handle, channel.Read)
}

func lookupWrite(n *nodeInfo, handle uint64) (*channel.Half, error) {
	return lookupDirection(n, handle, channel.Write)
}

// handleClone resolves handle, constructs a new Half over the same
// channel and direction, and installs it under a fresh handle value in
// n's own table. Called with r.mu held for writing.
func (r *Runtime) handleClone(n *nodeInfo, handle uint64) (uint64, error) {
	half, err := lookup(n, handle)
	if err != nil {
		return 0, err
	}
	clone := half.Clone()
	return r.newHandle(n, clone), nil
}

// installHalf installs half under a freshly allocated handle in n's
// table; a thin wrapper over newHandle. Read, TryRead and CreateNode call
// newHandle directly, so nothing in this package calls installHalf.
func (r *Runtime) installHalf(n *nodeInfo, half *channel.Half) uint64 {
	return r.newHandle(n, half)
}
