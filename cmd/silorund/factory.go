package main

import (
	"fmt"

	"github.com/silonet/silorun/config"
	"github.com/silonet/silorun/node"
)

// registryFactory dispatches CreateNode by name to a sub-factory.
// Concrete node implementations (Wasm interpreter, gRPC/HTTP pseudo-node,
// log pseudo-node, crypto pseudo-node) are out of scope for the runtime
// core (spec.md §1); silorund only owns the wiring that lets a deployment
// register its own node.Factory implementations under a name here.
type registryFactory struct {
	byName map[string]node.Factory
}

func (f *registryFactory) CreateNode(name string, cfg []byte) (node.CreatedNode, error) {
	sub, ok := f.byName[name]
	if !ok {
		return node.CreatedNode{}, fmt.Errorf("no node factory registered for %q", name)
	}
	return sub.CreateNode(name, cfg)
}

// loadNodeFactory builds the node factory registry for this deployment.
// The registry starts empty: a deployment wires concrete factories in by
// extending this function to fill byName.
func loadNodeFactory(cfg *config.Config) (node.Factory, error) {
	return &registryFactory{byName: make(map[string]node.Factory)}, nil
}
