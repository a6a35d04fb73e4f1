package runtime

import (
	"github.com/silonet/silorun/channel"
	"github.com/silonet/silorun/label"
)

// RuntimeConfiguration is the bootstrap input of spec.md §6: everything
// the caller submits to get a running Runtime and its first node spawned.
// The core treats ApplicationConfig, PermissionsConfig, SecureServerConfig,
// SignatureTable, KMSCredentials and ConfigMap as opaque bytes; their
// internal structure belongs to the out-of-scope collaborators named in
// §1 (config loading, signature verification policy, KMS client).
type RuntimeConfiguration struct {
	ApplicationConfig  []byte
	PermissionsConfig  []byte
	SecureServerConfig []byte
	SignatureTable     []byte
	KMSCredentials     []byte
	ConfigMap          []byte

	// InitialNodeName/InitialNodeLabel describe the first real
	// application node to spawn once the config channel exists.
	InitialNodeName  string
	InitialNodeLabel label.Label
}

// bootstrapNodeID is the implicit node's id. Real nodes are allocated
// starting at 1 via Runtime.nextNodeIDValue, so 0 never collides with
// one.
const bootstrapNodeID = 0

// Bootstrap implements spec.md §6's bootstrap protocol: it constructs a
// Runtime, creates an implicit bootstrap node with full privilege,
// allocates a channel, writes rtCfg.ConfigMap into it as the first
// message, closes the write side, spawns the application's first node
// with the read side as its initial handle, retires the bootstrap node,
// and returns the running Runtime.
func Bootstrap(cfg Config, rtCfg RuntimeConfiguration) (*Runtime, error) {
	r := New(cfg)

	r.mu.Lock()
	r.nodeInfos[bootstrapNodeID] = &nodeInfo{
		id:        bootstrapNodeID,
		name:      "bootstrap",
		nodeType:  "bootstrap",
		label:     label.PublicUntrusted(),
		privilege: label.TopPrivilege(),
		handles:   make(map[uint64]*channel.Half),
	}
	r.mu.Unlock()

	writeHandle, readHandle, err := r.Create(bootstrapNodeID, "bootstrap-config", label.PublicUntrusted(), ApplyDowngrade)
	if err != nil {
		return nil, err
	}

	if err := r.Write(bootstrapNodeID, writeHandle, NodeMessage{Data: rtCfg.ConfigMap}, ApplyDowngrade); err != nil {
		return nil, err
	}
	if err := r.Close(bootstrapNodeID, writeHandle); err != nil {
		return nil, err
	}

	if _, err := r.CreateNode(bootstrapNodeID, rtCfg.InitialNodeName, rtCfg.ApplicationConfig, rtCfg.InitialNodeLabel, readHandle, ApplyDowngrade); err != nil {
		return nil, err
	}

	r.removeNode(bootstrapNodeID)
	return r, nil
}
