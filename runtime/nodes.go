package runtime

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/silonet/silorun/channel"
	"github.com/silonet/silorun/label"
	"github.com/silonet/silorun/node"
)

// CreateNode implements spec.md §4.7 create-and-register. callerNodeID
// is the registering node's id (0 for the implicit bootstrap node; see
// runtime/bootstrap.go).
func (r *Runtime) CreateNode(callerNodeID uint64, name string, config []byte, lbl label.Label, initialHandle uint64, dg Downgrade) (uint64, error) {
	if r.IsTerminating() {
		return 0, errTerminated
	}
	if r.factory == nil {
		return 0, errInvalidArgs
	}

	r.mu.Lock()
	caller := r.node(callerNodeID)
	if err := validateCanWrite(caller, label.PublicUntrusted(), dg); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	if err := validateCanWrite(caller, lbl, dg); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	inherited, err := lookupRead(caller, initialHandle)
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.mu.Unlock()

	created, err := r.factory.CreateNode(name, config)
	if err != nil {
		return 0, newStatusf(InvalidArgs, "node factory rejected %q: %v", name, err)
	}

	if created.Instance.Isolation() == node.Uncontrolled {
		downgraded := created.Privilege.Downgrade(lbl)
		if !downgraded.FlowsTo(label.PublicUntrusted()) {
			return 0, errPermissionDenied
		}
	}

	r.mu.Lock()
	newID := r.nextNodeIDValue()
	info := &nodeInfo{
		id:        newID,
		name:      name,
		nodeType:  created.Instance.NodeType(),
		label:     lbl,
		privilege: created.Privilege,
		handles:   make(map[uint64]*channel.Half),
	}
	r.nodeInfos[newID] = info
	r.events.EmitNodeCreated(newID, name)
	r.metrics.NodeCreated(info.nodeType)
	entryHandle := r.newHandle(info, inherited.Clone())
	r.mu.Unlock()

	terminate := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer r.removeNode(newID)
		created.Instance.Run(&Proxy{runtime: r, nodeID: newID, nodeName: name}, entryHandle, terminate)
	}()

	stopper := &nodeStopper{terminate: terminate, done: done}

	r.mu.Lock()
	if stillPresent := r.nodeInfos[newID]; stillPresent != nil {
		stillPresent.stopper = stopper
		r.mu.Unlock()
	} else {
		r.mu.Unlock()
		log.Warnf("node %d (%s) exited before its stopper could be attached", newID, name)
	}

	return newID, nil
}

// removeNode implements spec.md §4.7 remove: closes every remaining
// handle in the node's table, removes its NodeInfo, and emits
// NodeDestroyed.
func (r *Runtime) removeNode(nodeID uint64) {
	r.mu.Lock()
	info, ok := r.nodeInfos[nodeID]
	if !ok {
		r.mu.Unlock()
		return
	}
	halves := maps.Values(info.handles)
	delete(r.nodeInfos, nodeID)
	r.mu.Unlock()

	for _, half := range halves {
		half.Close()
	}

	r.metrics.NodeDestroyed(info.nodeType)
	r.events.EmitNodeDestroyed(nodeID, info.name)
}

// Stop implements spec.md §4.7 Runtime termination: drains auxiliary
// servers, flips terminating, wakes every live node's waiters, notifies
// every node thread in ascending NodeId order, then joins them all
// concurrently. Calling Stop a second time is a programmer error and
// panics.
func (r *Runtime) Stop() error {
	auxErr := r.auxiliary.Stop()

	if r.terminating.Swap(true) {
		panic("runtime: Stop called twice")
	}

	r.mu.RLock()
	ids := maps.Keys(r.nodeInfos)
	slices.Sort(ids)
	var halvesToWake []*channel.Half
	for _, id := range ids {
		halvesToWake = append(halvesToWake, maps.Values(r.nodeInfos[id].handles)...)
	}
	r.mu.RUnlock()

	for _, half := range halvesToWake {
		half.Channel().WakeWaiters()
	}

	r.mu.Lock()
	stoppers := make([]*nodeStopper, 0, len(ids))
	for _, id := range ids {
		if info, ok := r.nodeInfos[id]; ok && info.stopper != nil {
			stoppers = append(stoppers, info.stopper)
			info.stopper = nil
		}
	}
	r.mu.Unlock()

	// Notifications go out in ascending NodeId order (spec.md §4.7), but
	// the joins themselves run concurrently: every node has already been
	// told to stop by the time any join begins, so waiting on them in
	// parallel only shortens Stop's wall-clock time, never reorders the
	// termination signal itself.
	for _, s := range stoppers {
		close(s.terminate)
	}
	var g errgroup.Group
	for _, s := range stoppers {
		s := s
		g.Go(func() error {
			<-s.done
			return nil
		})
	}
	_ = g.Wait()

	return auxErr
}
