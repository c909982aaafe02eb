package devtree

import "iter"

// EndpointInfo is the parsed connection descriptor of an endpoint node:
// the index of the port it belongs to and its endpoint id within that
// port. Both default to 0 when the corresponding node has no unit index.
type EndpointInfo struct {
	Port int // port index, from the parent port's unit index
	ID   int // endpoint id within the port
}

// graphBase returns the node the port list hangs off: the "ports"
// container child when present, otherwise the node itself.
func (n *Node) graphBase() *Node {
	if c := n.childByName("ports"); c != nil {
		return c
	}
	return n
}

// GraphPresent reports whether the node carries graph structure, i.e.
// at least one port child either directly or under a "ports"
// container. Resolution helpers return nil rather than an error on
// graphless nodes, so callers that consider a missing graph fatal
// should check this first.
func (r *Ref) GraphPresent() bool {
	base := r.n.graphBase()
	for _, c := range base.children {
		if c.NameIs("port") {
			return true
		}
	}
	return false
}

// Endpoints returns a lazy iterator over every endpoint reachable
// under r: all endpoint children of all port children, including ports
// grouped beneath a "ports" container. The sequence is finite and
// restartable; each call walks the tree afresh.
//
// Yielded refs are owned by the iterator and released when the loop
// body returns, including on break and early return. Clone a ref to
// retain it.
func (r *Ref) Endpoints() iter.Seq[*Ref] {
	return func(yield func(*Ref) bool) {
		base := r.n.graphBase()
		for _, port := range base.children {
			if !port.NameIs("port") {
				continue
			}
			for _, ep := range port.children {
				if !ep.NameIs("endpoint") {
					continue
				}
				ref := r.t.acquire(ep)
				ok := yield(ref)
				ref.Release()
				if !ok {
					return
				}
			}
		}
	}
}

// ParseEndpoint parses the endpoint's connection descriptor. The port
// index comes from the parent port's unit index and the endpoint id
// from the endpoint's own; either defaults to 0 when absent.
func (r *Ref) ParseEndpoint() EndpointInfo {
	var info EndpointInfo
	if reg, ok := r.n.reg, r.n.hasReg; ok {
		info.ID = reg
	}
	if p := r.n.parent; p != nil {
		if reg, ok := p.reg, p.hasReg; ok {
			info.Port = reg
		}
	}
	return info
}

// RemoteEndpoint resolves the endpoint's remote reference to the far
// endpoint node. Returns nil if the endpoint has no remote property or
// the reference does not resolve. The caller owns the returned ref.
func (r *Ref) RemoteEndpoint() *Ref {
	if r.n.remote == "" {
		return nil
	}
	return r.t.acquire(r.t.byPath[r.n.remote])
}

// RemotePort resolves the endpoint's remote reference and returns the
// port containing the far endpoint. The caller owns the returned ref.
func (r *Ref) RemotePort() *Ref {
	ep := r.RemoteEndpoint()
	if ep == nil {
		return nil
	}
	defer ep.Release()
	return r.t.acquire(ep.n.parent)
}

// RemotePortParent resolves the endpoint's remote reference and
// returns the device on the far side: the remote port's parent,
// skipping over a "ports" container. The caller owns the returned ref.
func (r *Ref) RemotePortParent() *Ref {
	port := r.RemotePort()
	if port == nil {
		return nil
	}
	defer port.Release()
	parent := port.n.parent
	if parent != nil && parent.NameIs("ports") {
		parent = parent.parent
	}
	return r.t.acquire(parent)
}

// RemoteNode resolves the remote device connected at the given local
// port and endpoint indices. An endpoint index of -1 matches the first
// endpoint of the port. Returns nil when no matching local endpoint
// exists, the remote reference does not resolve, or the remote device
// is disabled. The caller owns the returned ref.
func (r *Ref) RemoteNode(port, endpoint int) *Ref {
	var remote *Ref
	for ep := range r.Endpoints() {
		info := ep.ParseEndpoint()
		if info.Port != port {
			continue
		}
		if endpoint >= 0 && info.ID != endpoint {
			continue
		}
		remote = ep.RemotePortParent()
		break
	}
	if remote == nil {
		return nil
	}
	if !remote.Available() {
		remote.Release()
		return nil
	}
	return remote
}

// PortsRef resolves the i-th entry of the node's "ports" reference
// list. Returns nil once the list is exhausted, the node has no such
// property, or the entry does not resolve. The caller owns the
// returned ref.
func (r *Ref) PortsRef(i int) *Ref {
	if i < 0 || i >= len(r.n.ports) {
		return nil
	}
	return r.t.acquire(r.t.byPath[r.n.ports[i]])
}
