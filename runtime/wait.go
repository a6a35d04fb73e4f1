package runtime

import "github.com/silonet/silorun/channel"

// waitEntry is one resolved input to Wait: either a valid read half, or
// nothing (the input handle didn't resolve to a read half at all).
type waitEntry struct {
	half  *channel.Half
	valid bool
}

// Wait implements spec.md §4.6 wait_on_channels. It resolves every
// handle exactly once up front; an unresolved handle keeps InvalidChannel
// in its output slot for every iteration.
func (r *Runtime) Wait(nodeID uint64, readHandles []uint64, dg Downgrade) ([]Code, error) {
	r.mu.RLock()
	n := r.node(nodeID)
	entries := make([]waitEntry, len(readHandles))
	anyInvalid := false
	for i, h := range readHandles {
		half, err := lookupRead(n, h)
		entries[i] = waitEntry{half: half, valid: err == nil}
		if err != nil {
			anyInvalid = true
		}
	}
	r.mu.RUnlock()

	parker := channel.NewParker()

	for {
		if r.IsTerminating() {
			return nil, errTerminated
		}

		// Register before computing statuses (spec.md §4.6 ordering):
		// an enqueue racing with the check below is either visible in
		// the status computed here, or will unpark us afterward.
		for _, e := range entries {
			if e.valid {
				e.half.Channel().AddWaiter(parker)
			}
		}

		statuses := make([]Code, len(entries))
		anyTerminal := false
		for i, e := range entries {
			if !e.valid {
				statuses[i] = InvalidChannel
				continue
			}
			code := channelStatusForHalf(n, e.half, dg)
			statuses[i] = code
			if code != NotReady {
				anyTerminal = true
			}
		}

		if anyTerminal || len(entries) == 0 || anyInvalid {
			return statuses, nil
		}

		parker.Park()
	}
}

// channelStatusForHalf computes the wait/channel_status Code for an
// already-resolved read half. n's label and privilege are immutable
// after registration (I4), so this needs no lock on the node; the
// channel's own state is read through its own internal lock.
func channelStatusForHalf(n *nodeInfo, half *channel.Half, dg Downgrade) Code {
	ch := half.Channel()
	if err := validateCanRead(n, ch.Label(), dg); err != nil {
		return PermissionDenied
	}
	switch ch.State() {
	case channel.ReadReady:
		return ReadReady
	case channel.Orphaned:
		return Orphaned
	default:
		return NotReady
	}
}
