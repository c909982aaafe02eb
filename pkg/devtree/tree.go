package devtree

import (
	"iter"
	"sync/atomic"
)

// Tree is a loaded device graph. It owns all nodes and hands out [Ref]
// handles through lookups and graph resolution. The tree is read-only
// after loading and safe for concurrent readers.
type Tree struct {
	root   *Node
	byPath map[string]*Node

	acquires atomic.Int64
	releases atomic.Int64
}

func newTree() *Tree {
	root := &Node{name: "/", path: "/"}
	return &Tree{
		root:   root,
		byPath: map[string]*Node{"/": root},
	}
}

// acquire increments the node's refcount and returns an owned handle.
// A nil node yields a nil Ref, which Release treats as a no-op.
func (t *Tree) acquire(n *Node) *Ref {
	if n == nil {
		return nil
	}
	n.refs.Add(1)
	t.acquires.Add(1)
	return &Ref{n: n, t: t}
}

// Root returns an owned handle to the root node.
func (t *Tree) Root() *Ref { return t.acquire(t.root) }

// Lookup returns an owned handle to the node at the given absolute
// path, or nil if no such node exists.
func (t *Tree) Lookup(path string) *Ref {
	return t.acquire(t.byPath[path])
}

// Len returns the number of nodes in the tree, excluding the root.
func (t *Tree) Len() int { return len(t.byPath) - 1 }

// RefStats returns the total number of handle acquisitions and
// releases observed since the tree was loaded. For a quiescent tree
// with no outstanding handles the two are equal; tests use this to
// assert exact acquire/release balance across every code path.
func (t *Tree) RefStats() (acquires, releases int64) {
	return t.acquires.Load(), t.releases.Load()
}

// Nodes returns an iterator over all nodes in document order as
// borrowed references, starting at the root's children. Intended for
// read-only walks such as rendering and device listing; no handles
// are involved.
func (t *Tree) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var walk func(n *Node) bool
		walk = func(n *Node) bool {
			for _, c := range n.children {
				if !yield(c) {
					return false
				}
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(t.root)
	}
}

// Children returns an iterator over the direct children of r. Each
// yielded Ref is owned by the iterator and released when the loop body
// returns; use [Ref.Clone] to retain one.
func (r *Ref) Children() iter.Seq[*Ref] {
	return r.childIter(false)
}

// AvailableChildren is like [Ref.Children] but skips disabled nodes.
func (r *Ref) AvailableChildren() iter.Seq[*Ref] {
	return r.childIter(true)
}

func (r *Ref) childIter(availableOnly bool) iter.Seq[*Ref] {
	return func(yield func(*Ref) bool) {
		for _, c := range r.n.children {
			if availableOnly && !c.Available() {
				continue
			}
			ref := r.t.acquire(c)
			ok := yield(ref)
			ref.Release()
			if !ok {
				return
			}
		}
	}
}
