// Package node defines the capability interface every concrete node type
// (Wasm interpreter, gRPC/HTTP pseudo-node, log pseudo-node, crypto
// pseudo-node, ...) must implement. The runtime package only ever sees
// this interface: dynamic dispatch over Node, never inheritance.
package node

import "github.com/silonet/silorun/label"

// Isolation classifies how much the runtime trusts a node instance to
// contain the labels it learns. It influences exactly one check, at
// create-and-register time (spec.md step 4.7/4).
type Isolation int

const (
	// Sandboxed instances run inside a container that is trusted to
	// contain any label the instance may learn; the runtime skips the
	// flows-to-public-untrusted check on such instances.
	Sandboxed Isolation = iota
	// Uncontrolled instances run with no additional confinement beyond
	// the runtime's own IFC checks; create-and-register requires that
	// their downgraded label flows to public_untrusted.
	Uncontrolled
)

func (i Isolation) String() string {
	if i == Sandboxed {
		return "sandboxed"
	}
	return "uncontrolled"
}

// RuntimeProxy is the per-node façade a Node's Run method is handed
// (spec.md §6): every operation of §4.5/§4.6 plus node_create,
// channel_close, label readbacks and handle-clone, with the caller's
// NodeId implicit. It is implemented by *runtime.Proxy; this package
// only depends on its shape, so a concrete node type — and its tests —
// never need to import runtime.
//
// Every operation that can apply privilege comes in two forms, plain and
// WithDowngrade, since downgrading is never implicit (spec.md §4.4).
type RuntimeProxy interface {
	NodeID() uint64
	NodeName() string

	CreateChannel(name string, lbl label.Label) (writeHandle, readHandle uint64, err error)
	CreateChannelWithDowngrade(name string, lbl label.Label) (writeHandle, readHandle uint64, err error)

	Write(writeHandle uint64, msg Message) error
	WriteWithDowngrade(writeHandle uint64, msg Message) error

	Read(readHandle uint64) (*Message, error)
	ReadWithDowngrade(readHandle uint64) (*Message, error)

	TryRead(readHandle uint64, bytesCap, handlesCap int) (msg *Message, fits bool, needsBytes, needsHandles int, err error)
	TryReadWithDowngrade(readHandle uint64, bytesCap, handlesCap int) (msg *Message, fits bool, needsBytes, needsHandles int, err error)

	Wait(readHandles []uint64) ([]Code, error)
	WaitWithDowngrade(readHandles []uint64) ([]Code, error)

	ChannelStatus(handle uint64) Code
	ChannelStatusWithDowngrade(handle uint64) Code
	ChannelClose(handle uint64) error

	HandleClone(handle uint64) (uint64, error)

	CreateNode(name string, config []byte, lbl label.Label, initialHandle uint64) (uint64, error)
	CreateNodeWithDowngrade(name string, config []byte, lbl label.Label, initialHandle uint64) (uint64, error)

	SerializedChannelLabel(handle uint64, capacity int) (data []byte, required int, err error)
	SerializedNodeLabel(capacity int) (data []byte, required int, err error)
	SerializedNodePrivilege(capacity int) (data []byte, required int, err error)
}

// Node is the capability every concrete node type must implement. A
// node's Run method executes on a dedicated goroutine until it returns
// voluntarily; it must observe terminator and treat a Terminated status
// from any runtime call as a signal to return.
type Node interface {
	// Run executes the node's logic. initialHandle is the one handle
	// inherited from the creating node's table, already installed in
	// this node's own table. terminator is closed when the runtime is
	// stopping; Run must return promptly afterwards.
	Run(proxy RuntimeProxy, initialHandle uint64, terminator <-chan struct{})

	// NodeType returns a static string used only for metrics labels.
	NodeType() string

	// Isolation reports this instance's isolation class.
	Isolation() Isolation
}

// CreatedNode is what a NodeFactory produces: the node instance plus the
// privilege the factory grants it. The factory is the sole authority on
// what privilege a given configuration confers.
type CreatedNode struct {
	Instance  Node
	Privilege label.Privilege
}

// Factory builds node instances from a name and an opaque configuration
// blob. Concrete factories (Wasm loader, gRPC server factory, ...) are
// registered with the runtime at startup; the runtime itself never
// constructs a Node directly.
type Factory interface {
	CreateNode(name string, config []byte) (CreatedNode, error)
}
