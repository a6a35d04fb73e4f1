package introspection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCausalOrderAndSeq(t *testing.T) {
	log := New()

	log.EmitNodeCreated(10, "a")
	log.EmitChannelCreated(1, "c")
	log.EmitHandleCreated(10, 1, 100)
	log.EmitMessageEnqueued(1, nil)
	log.EmitMessageDequeued(1, nil)
	log.EmitHandleDestroyed(10, 1, 100)
	log.EmitNodeDestroyed(10, "a")

	events := log.Snapshot()
	require.Len(t, events, 7)
	for i, e := range events {
		require.EqualValues(t, i, e.Seq)
	}
	require.Equal(t, NodeCreated, events[0].Kind)
	require.Equal(t, ChannelCreated, events[1].Kind)
	require.Equal(t, HandleCreated, events[2].Kind)
	require.Equal(t, NodeDestroyed, events[6].Kind)

	// spec.md I6: NodeCreated precedes every event attributed to that
	// node. Every event naming node 10 (HandleCreated/HandleDestroyed/
	// NodeDestroyed) must have a strictly greater Seq than NodeCreated.
	nodeCreatedSeq := events[0].Seq
	for _, e := range events[1:] {
		if e.Kind == HandleCreated || e.Kind == HandleDestroyed || e.Kind == NodeDestroyed {
			require.Greater(t, e.Seq, nodeCreatedSeq)
		}
	}
}

func TestDisabledLogDropsEvents(t *testing.T) {
	log := NewDisabled()
	log.EmitChannelCreated(1, "c")
	log.EmitChannelCreated(2, "d")

	require.Empty(t, log.Snapshot())
}
