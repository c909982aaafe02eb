package devtree

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Node is a single configuration node in a device graph. Nodes are
// created by the manifest loader and never mutated afterwards; the
// *Node pointer is the identity used for equality comparison by
// registries and mask computation.
//
// Callers outside this package hold Nodes only as borrowed references
// for identity and availability checks. Ownership is expressed through
// [Ref] handles.
type Node struct {
	name     string // last path segment, e.g. "endpoint@0"
	path     string // absolute slash-separated path
	status   string // "" or "okay" mean available
	compat   string // compatible string, empty for structural nodes
	reg      int    // unit index within the parent, from the "reg" property
	hasReg   bool
	remote   string   // path reference to the far endpoint, empty if none
	ports    []string // path references of the "ports" property list
	parent   *Node
	children []*Node // document order
	declared bool    // set for nodes the manifest names explicitly

	refs atomic.Int64
}

// Name returns the node name including any unit address (e.g. "port@1").
func (n *Node) Name() string { return n.name }

// Path returns the absolute path of the node.
func (n *Node) Path() string { return n.path }

// BaseName returns the node name with any unit address stripped,
// so "port@1" and "port" both report "port".
func (n *Node) BaseName() string {
	if i := strings.IndexByte(n.name, '@'); i >= 0 {
		return n.name[:i]
	}
	return n.name
}

// NameIs reports whether the node's base name equals s.
func (n *Node) NameIs(s string) bool { return n.BaseName() == s }

// Available reports whether the node is enabled. A node with no status
// property, or with status "okay", is available.
func (n *Node) Available() bool {
	return n.status == "" || n.status == "okay"
}

// Compatible returns the node's compatible string, empty for purely
// structural nodes such as ports and endpoints.
func (n *Node) Compatible() string { return n.compat }

// Reg returns the node's unit index and whether one was declared.
func (n *Node) Reg() (int, bool) { return n.reg, n.hasReg }

// Parent returns the parent node as a borrowed reference, or nil for
// the root.
func (n *Node) Parent() *Node { return n.parent }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

func (n *Node) childByName(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Ref is an owned handle to a Node. Refs are obtained from [Tree]
// lookups and graph resolution calls, and must be released exactly
// once. Release is nil-safe; releasing the same Ref twice panics, as
// it indicates a refcount imbalance that would otherwise go unnoticed.
type Ref struct {
	n        *Node
	t        *Tree
	released bool
}

// Node returns the underlying node as a borrowed reference, valid for
// identity comparison even after the Ref is released.
func (r *Ref) Node() *Node {
	if r == nil {
		return nil
	}
	return r.n
}

// Name returns the node name, see [Node.Name].
func (r *Ref) Name() string { return r.n.name }

// Path returns the absolute node path.
func (r *Ref) Path() string { return r.n.path }

// Available reports whether the node is enabled.
func (r *Ref) Available() bool { return r.n.Available() }

// ParentAvailable reports whether the node has a parent and that
// parent is enabled.
func (r *Ref) ParentAvailable() bool {
	return r.n.parent != nil && r.n.parent.Available()
}

// Clone acquires a new handle to the same node. The clone must be
// released independently.
func (r *Ref) Clone() *Ref {
	if r == nil {
		return nil
	}
	return r.t.acquire(r.n)
}

// Release drops the handle. Calling Release on a nil Ref is a no-op;
// releasing a Ref twice panics.
func (r *Ref) Release() {
	if r == nil {
		return
	}
	if r.released {
		panic(fmt.Sprintf("devtree: double release of %s", r.n.path))
	}
	r.released = true
	if r.n.refs.Add(-1) < 0 {
		panic(fmt.Sprintf("devtree: negative refcount on %s", r.n.path))
	}
	r.t.releases.Add(1)
}

// Child returns an owned handle to the direct child with the given
// full name, or nil if there is none.
func (r *Ref) Child(name string) *Ref {
	return r.t.acquire(r.n.childByName(name))
}
