// Package devtree models the hierarchical device graph a display
// pipeline is described with: a tree of named configuration nodes
// carrying availability status, reference properties, and the
// port/endpoint structure that links devices together.
//
// # Architecture
//
// The package has three layers:
//
//   - [Tree], [Node]: the tree itself. Nodes are externally owned,
//     read-mostly, and never mutated after loading. Node pointers are
//     the identity used by registries and mask computation.
//   - [Ref]: an owned, reference-counted handle to a node. Every Ref
//     obtained from a lookup or a graph resolution call must be
//     released exactly once. The tree keeps global acquire/release
//     counters so tests can assert exact balance.
//   - Graph navigation: endpoint iteration and remote-link resolution
//     ([Ref.Endpoints], [Ref.RemotePort], [Ref.RemoteNode], ...).
//
// # Ownership
//
// Refs follow scoped ownership: acquire, defer Release. Iterators own
// the refs they yield and release them when the loop body returns;
// call [Ref.Clone] to retain a yielded ref beyond the iteration.
//
//	for ep := range port.Endpoints() {
//	    remote := ep.RemotePort()
//	    if remote == nil {
//	        break // ep is released by the iterator
//	    }
//	    // ...
//	    remote.Release()
//	}
//
// # Manifests
//
// Trees are loaded from TOML manifests: an ordered [[node]] array of
// tables keyed by absolute path, where document order defines child
// order. See [Parse].
package devtree
