package runtime

import "github.com/silonet/silorun/label"

// Proxy is the per-node façade of spec.md §6: "what a node thread
// calls". It carries (runtime, node_id, node_name) and supplies the
// caller's NodeId implicitly to every Runtime operation. Every operation
// that can apply privilege is exposed in two forms, one suffixed
// WithDowngrade and one without, so that downgrading is always an
// explicit per-call choice rather than an implicit default.
type Proxy struct {
	runtime  *Runtime
	nodeID   uint64
	nodeName string
}

// NodeID implements node.RuntimeProxy.
func (p *Proxy) NodeID() uint64 { return p.nodeID }

// NodeName implements node.RuntimeProxy.
func (p *Proxy) NodeName() string { return p.nodeName }

// CreateChannel creates a channel labeled lbl without applying this
// node's privilege to the IFC checks.
func (p *Proxy) CreateChannel(name string, lbl label.Label) (writeHandle, readHandle uint64, err error) {
	return p.runtime.Create(p.nodeID, name, lbl, NoDowngrade)
}

// CreateChannelWithDowngrade is CreateChannel with this node's privilege
// applied to both IFC checks.
func (p *Proxy) CreateChannelWithDowngrade(name string, lbl label.Label) (writeHandle, readHandle uint64, err error) {
	return p.runtime.Create(p.nodeID, name, lbl, ApplyDowngrade)
}

// Write sends msg on writeHandle without applying privilege.
func (p *Proxy) Write(writeHandle uint64, msg NodeMessage) error {
	return p.runtime.Write(p.nodeID, writeHandle, msg, NoDowngrade)
}

// WriteWithDowngrade is Write with privilege applied.
func (p *Proxy) WriteWithDowngrade(writeHandle uint64, msg NodeMessage) error {
	return p.runtime.Write(p.nodeID, writeHandle, msg, ApplyDowngrade)
}

// Read reads from readHandle without applying privilege.
func (p *Proxy) Read(readHandle uint64) (*NodeMessage, error) {
	return p.runtime.Read(p.nodeID, readHandle, NoDowngrade)
}

// ReadWithDowngrade is Read with privilege applied.
func (p *Proxy) ReadWithDowngrade(readHandle uint64) (*NodeMessage, error) {
	return p.runtime.Read(p.nodeID, readHandle, ApplyDowngrade)
}

// TryRead probes readHandle without applying privilege.
func (p *Proxy) TryRead(readHandle uint64, bytesCap, handlesCap int) (msg *NodeMessage, fits bool, needsBytes, needsHandles int, err error) {
	return p.runtime.TryRead(p.nodeID, readHandle, bytesCap, handlesCap, NoDowngrade)
}

// TryReadWithDowngrade is TryRead with privilege applied.
func (p *Proxy) TryReadWithDowngrade(readHandle uint64, bytesCap, handlesCap int) (msg *NodeMessage, fits bool, needsBytes, needsHandles int, err error) {
	return p.runtime.TryRead(p.nodeID, readHandle, bytesCap, handlesCap, ApplyDowngrade)
}

// Wait blocks on readHandles without applying privilege.
func (p *Proxy) Wait(readHandles []uint64) ([]Code, error) {
	return p.runtime.Wait(p.nodeID, readHandles, NoDowngrade)
}

// WaitWithDowngrade is Wait with privilege applied.
func (p *Proxy) WaitWithDowngrade(readHandles []uint64) ([]Code, error) {
	return p.runtime.Wait(p.nodeID, readHandles, ApplyDowngrade)
}

// ChannelStatus reports handle's status without applying privilege.
func (p *Proxy) ChannelStatus(handle uint64) Code {
	return p.runtime.ChannelStatus(p.nodeID, handle, NoDowngrade)
}

// ChannelStatusWithDowngrade is ChannelStatus with privilege applied.
func (p *Proxy) ChannelStatusWithDowngrade(handle uint64) Code {
	return p.runtime.ChannelStatus(p.nodeID, handle, ApplyDowngrade)
}

// ChannelClose releases handle.
func (p *Proxy) ChannelClose(handle uint64) error {
	return p.runtime.Close(p.nodeID, handle)
}

// HandleClone duplicates handle, returning a second handle over the
// same channel half. Like create and register, it fails with Terminated
// once the runtime is stopping (spec.md §5): cloning a handle grants new
// capability, which the termination path must be able to rely on having
// stopped.
func (p *Proxy) HandleClone(handle uint64) (uint64, error) {
	if p.runtime.IsTerminating() {
		return 0, errTerminated
	}
	p.runtime.mu.Lock()
	defer p.runtime.mu.Unlock()
	n := p.runtime.node(p.nodeID)
	return p.runtime.handleClone(n, handle)
}

// CreateNode registers a new node without applying this node's
// privilege to the create-and-register IFC checks.
func (p *Proxy) CreateNode(name string, config []byte, lbl label.Label, initialHandle uint64) (uint64, error) {
	return p.runtime.CreateNode(p.nodeID, name, config, lbl, initialHandle, NoDowngrade)
}

// CreateNodeWithDowngrade is CreateNode with privilege applied.
func (p *Proxy) CreateNodeWithDowngrade(name string, config []byte, lbl label.Label, initialHandle uint64) (uint64, error) {
	return p.runtime.CreateNode(p.nodeID, name, config, lbl, initialHandle, ApplyDowngrade)
}

// SerializedChannelLabel returns the canonical encoding of handle's
// channel's label, or (nil, required, nil) if capacity is smaller than
// the encoding's length.
func (p *Proxy) SerializedChannelLabel(handle uint64, capacity int) (data []byte, required int, err error) {
	p.runtime.mu.RLock()
	n := p.runtime.node(p.nodeID)
	half, err := lookup(n, handle)
	p.runtime.mu.RUnlock()
	if err != nil {
		return nil, 0, err
	}
	lbl := half.Channel().Label()
	return encodeWithCapacity(lbl, capacity)
}

// SerializedNodeLabel returns the canonical encoding of this node's own
// label.
func (p *Proxy) SerializedNodeLabel(capacity int) (data []byte, required int, err error) {
	p.runtime.mu.RLock()
	n := p.runtime.node(p.nodeID)
	lbl := n.label
	p.runtime.mu.RUnlock()
	return encodeWithCapacity(lbl, capacity)
}

// SerializedNodePrivilege returns the canonical encoding of this node's
// privilege, represented as a Label via Privilege.AsLabel (declassify
// tags as confidentiality, endorse tags as integrity), matching
// §9's "top tag is global across sub-lattices" note: privilege shares
// the label encoding rather than inventing a second wire format.
func (p *Proxy) SerializedNodePrivilege(capacity int) (data []byte, required int, err error) {
	p.runtime.mu.RLock()
	n := p.runtime.node(p.nodeID)
	priv := n.privilege
	p.runtime.mu.RUnlock()
	return encodeWithCapacity(priv.AsLabel(), capacity)
}

func encodeWithCapacity(l label.Label, capacity int) ([]byte, int, error) {
	required := l.EncodedLen()
	if capacity < required {
		return nil, required, nil
	}
	return l.Encode(), required, nil
}
