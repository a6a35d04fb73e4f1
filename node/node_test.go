package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/silonet/silorun/label"
)

// fakeProxy is a RuntimeProxy double used to exercise a fake Node in
// isolation, in the same spirit as the teacher's htlcswitch mock link.
// Every channel/node operation is a no-op stub: fakeNode (below) never
// calls into its proxy and only blocks on its terminator, so nothing
// exercises the surface, but the type must still satisfy
// RuntimeProxy in full to stand in for it at all.
type fakeProxy struct {
	id   uint64
	name string
}

func (f *fakeProxy) NodeID() uint64   { return f.id }
func (f *fakeProxy) NodeName() string { return f.name }

func (f *fakeProxy) CreateChannel(name string, lbl label.Label) (uint64, uint64, error) {
	return 0, 0, nil
}
func (f *fakeProxy) CreateChannelWithDowngrade(name string, lbl label.Label) (uint64, uint64, error) {
	return 0, 0, nil
}

func (f *fakeProxy) Write(writeHandle uint64, msg Message) error             { return nil }
func (f *fakeProxy) WriteWithDowngrade(writeHandle uint64, msg Message) error { return nil }

func (f *fakeProxy) Read(readHandle uint64) (*Message, error)             { return nil, nil }
func (f *fakeProxy) ReadWithDowngrade(readHandle uint64) (*Message, error) { return nil, nil }

func (f *fakeProxy) TryRead(readHandle uint64, bytesCap, handlesCap int) (*Message, bool, int, int, error) {
	return nil, false, 0, 0, nil
}
func (f *fakeProxy) TryReadWithDowngrade(readHandle uint64, bytesCap, handlesCap int) (*Message, bool, int, int, error) {
	return nil, false, 0, 0, nil
}

func (f *fakeProxy) Wait(readHandles []uint64) ([]Code, error)             { return nil, nil }
func (f *fakeProxy) WaitWithDowngrade(readHandles []uint64) ([]Code, error) { return nil, nil }

func (f *fakeProxy) ChannelStatus(handle uint64) Code             { return Ok }
func (f *fakeProxy) ChannelStatusWithDowngrade(handle uint64) Code { return Ok }
func (f *fakeProxy) ChannelClose(handle uint64) error              { return nil }

func (f *fakeProxy) HandleClone(handle uint64) (uint64, error) { return 0, nil }

func (f *fakeProxy) CreateNode(name string, config []byte, lbl label.Label, initialHandle uint64) (uint64, error) {
	return 0, nil
}
func (f *fakeProxy) CreateNodeWithDowngrade(name string, config []byte, lbl label.Label, initialHandle uint64) (uint64, error) {
	return 0, nil
}

func (f *fakeProxy) SerializedChannelLabel(handle uint64, capacity int) ([]byte, int, error) {
	return nil, 0, nil
}
func (f *fakeProxy) SerializedNodeLabel(capacity int) ([]byte, int, error) {
	return nil, 0, nil
}
func (f *fakeProxy) SerializedNodePrivilege(capacity int) ([]byte, int, error) {
	return nil, 0, nil
}

// fakeNode records whether it was run and whether it observed the
// terminator before returning.
type fakeNode struct {
	isolation Isolation
	ran       bool
	sawTerm   bool
}

func (n *fakeNode) Run(proxy RuntimeProxy, initialHandle uint64, terminator <-chan struct{}) {
	n.ran = true
	<-terminator
	n.sawTerm = true
}

func (n *fakeNode) NodeType() string     { return "fake" }
func (n *fakeNode) Isolation() Isolation { return n.isolation }

func TestIsolationString(t *testing.T) {
	require.Equal(t, "sandboxed", Sandboxed.String())
	require.Equal(t, "uncontrolled", Uncontrolled.String())
}

func TestFakeNodeRunObservesTerminator(t *testing.T) {
	n := &fakeNode{isolation: Uncontrolled}
	term := make(chan struct{})
	done := make(chan struct{})

	go func() {
		n.Run(&fakeProxy{id: 1, name: "a"}, 7, term)
		close(done)
	}()

	require.Eventually(t, func() bool { return n.ran }, time.Second, 5*time.Millisecond)
	close(term)
	<-done
	require.True(t, n.sawTerm)
}
