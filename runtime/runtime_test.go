package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/silonet/silorun/channel"
	"github.com/silonet/silorun/label"
	"github.com/silonet/silorun/node"
)

// scriptNode runs an arbitrary function against its proxy; it is the
// test double standing in for a real Wasm/gRPC/... node implementation,
// in the same spirit as the teacher's htlcswitch mock link.
type scriptNode struct {
	fn func(proxy node.RuntimeProxy, initialHandle uint64, terminator <-chan struct{})
}

func (n *scriptNode) Run(proxy node.RuntimeProxy, initialHandle uint64, terminator <-chan struct{}) {
	n.fn(proxy, initialHandle, terminator)
}
func (n *scriptNode) NodeType() string          { return "script" }
func (n *scriptNode) Isolation() node.Isolation { return node.Uncontrolled }

// scriptFactory dispenses a scriptNode per registered name.
type scriptFactory struct {
	scripts map[string]func(proxy node.RuntimeProxy, initialHandle uint64, terminator <-chan struct{})
}

func (f *scriptFactory) CreateNode(name string, config []byte) (node.CreatedNode, error) {
	fn, ok := f.scripts[name]
	if !ok {
		return node.CreatedNode{}, errInvalidArgs
	}
	return node.CreatedNode{Instance: &scriptNode{fn: fn}}, nil
}

// newTestRuntime builds a Runtime seeded with one all-privileged root
// node (id 0) so tests can call the Runtime's node-scoped operations
// directly without running the full Bootstrap protocol.
func newTestRuntime(factory node.Factory) *Runtime {
	r := New(Config{Factory: factory})
	r.mu.Lock()
	r.nodeInfos[0] = &nodeInfo{
		id:        0,
		name:      "root",
		nodeType:  "root",
		label:     label.PublicUntrusted(),
		privilege: label.TopPrivilege(),
		handles:   make(map[uint64]*channel.Half),
	}
	r.mu.Unlock()
	return r
}

// Scenario 1: create & echo.
func TestCreateAndEcho(t *testing.T) {
	r := newTestRuntime(nil)

	w, rd, err := r.Create(0, "c", label.PublicUntrusted(), NoDowngrade)
	require.NoError(t, err)

	require.NoError(t, r.Write(0, w, NodeMessage{Data: []byte{0x01, 0x02}}, NoDowngrade))

	msg, err := r.Read(0, rd, NoDowngrade)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, msg.Data)
	require.Empty(t, msg.Handles)

	require.NoError(t, r.Close(0, w))

	_, err = r.Read(0, rd, NoDowngrade)
	require.Error(t, err)
	require.Equal(t, ChannelClosed, StatusCode(err))
}

// Scenario 2: orphan on reader drop.
func TestOrphanOnReaderDrop(t *testing.T) {
	r := newTestRuntime(nil)

	w, rd, err := r.Create(0, "c", label.PublicUntrusted(), NoDowngrade)
	require.NoError(t, err)
	require.NoError(t, r.Close(0, rd))

	err = r.Write(0, w, NodeMessage{Data: []byte("x")}, NoDowngrade)
	require.Error(t, err)
	require.Equal(t, ChannelClosed, StatusCode(err))
}

// Scenario 3: IFC denial, then success with downgrade.
func TestIFCDenialThenDowngradeSucceeds(t *testing.T) {
	r := New(Config{})
	r.mu.Lock()
	r.nodeInfos[0] = &nodeInfo{
		id:        0,
		name:      "secret-holder",
		nodeType:  "test",
		label:     label.Label{Confidentiality: label.TagSet{"secret"}},
		privilege: label.Privilege{},
		handles:   make(map[uint64]*channel.Half),
	}
	r.mu.Unlock()

	_, _, err := r.Create(0, "c", label.PublicUntrusted(), NoDowngrade)
	require.Error(t, err)
	require.Equal(t, PermissionDenied, StatusCode(err))

	r.mu.Lock()
	r.nodeInfos[0].privilege = label.Privilege{Declassify: label.TagSet{"secret"}}
	r.mu.Unlock()

	_, _, err = r.Create(0, "c", label.PublicUntrusted(), ApplyDowngrade)
	require.NoError(t, err)
}

// Scenario 4: wait wakes on enqueue.
func TestWaitWakesOnEnqueue(t *testing.T) {
	r := newTestRuntime(nil)
	w, rd, err := r.Create(0, "c", label.PublicUntrusted(), NoDowngrade)
	require.NoError(t, err)

	type result struct {
		codes []Code
		err   error
	}
	results := make(chan result, 1)
	go func() {
		codes, err := r.Wait(0, []uint64{rd}, NoDowngrade)
		results <- result{codes, err}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, r.Write(0, w, NodeMessage{Data: []byte("hi")}, NoDowngrade))

	select {
	case res := <-results:
		require.NoError(t, res.err)
		require.Equal(t, []Code{ReadReady}, res.codes)
	case <-time.After(time.Second):
		t.Fatal("wait never returned after enqueue")
	}

	msg, err := r.Read(0, rd, NoDowngrade)
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), msg.Data)
}

// Scenario 5: capacity probe.
func TestTryReadCapacityProbe(t *testing.T) {
	r := newTestRuntime(nil)
	w, rd, err := r.Create(0, "c", label.PublicUntrusted(), NoDowngrade)
	require.NoError(t, err)

	_, rd2, err := r.Create(0, "inner", label.PublicUntrusted(), NoDowngrade)
	require.NoError(t, err)

	require.NoError(t, r.Write(0, w, NodeMessage{
		Data:    make([]byte, 7),
		Handles: []uint64{rd2},
	}, NoDowngrade))

	msg, fits, needsBytes, needsHandles, err := r.TryRead(0, rd, 4, 4, NoDowngrade)
	require.NoError(t, err)
	require.False(t, fits)
	require.Nil(t, msg)
	require.Equal(t, 7, needsBytes)
	require.Equal(t, 1, needsHandles)

	msg, fits, _, _, err = r.TryRead(0, rd, 7, 1, NoDowngrade)
	require.NoError(t, err)
	require.True(t, fits)
	require.Len(t, msg.Handles, 1)
}

// Scenario 6: shutdown.
func TestStopTerminatesBlockedNodes(t *testing.T) {
	const nodeCount = 3
	blocked := make(chan struct{}, nodeCount)
	sawTerminated := make(chan bool, nodeCount)

	factory := &scriptFactory{
		scripts: map[string]func(node.RuntimeProxy, uint64, <-chan struct{}){
			"waiter": func(proxy node.RuntimeProxy, initialHandle uint64, terminator <-chan struct{}) {
				blocked <- struct{}{}
				_, err := proxy.Wait([]uint64{initialHandle})
				sawTerminated <- StatusCode(err) == Terminated
			},
		},
	}

	r := newTestRuntime(factory)

	var readHandles []uint64
	for i := 0; i < nodeCount; i++ {
		w, rd, err := r.Create(0, "feed", label.PublicUntrusted(), NoDowngrade)
		require.NoError(t, err)
		_ = w
		_, err = r.CreateNode(0, "waiter", nil, label.PublicUntrusted(), rd, NoDowngrade)
		require.NoError(t, err)
		readHandles = append(readHandles, rd)
	}

	for i := 0; i < nodeCount; i++ {
		<-blocked
	}
	// Give each spawned goroutine a moment to reach its Wait call.
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- r.Stop() }()

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	for i := 0; i < nodeCount; i++ {
		require.True(t, <-sawTerminated)
	}

	r.mu.RLock()
	remaining := len(r.nodeInfos)
	r.mu.RUnlock()
	require.Equal(t, 1, remaining) // only the root seed node remains (it was never removed)
}
