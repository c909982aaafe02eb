package topology

import (
	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// CompareFunc is the predicate a binding framework uses to match a
// graph node against a concrete driver instance.
type CompareFunc func(n *devtree.Node) bool

// Match is one entry of a match list: a node handle paired with the
// comparison predicate the binding framework will apply to it.
type Match struct {
	ref     *devtree.Ref
	compare CompareFunc
}

// Node returns the matched node as a borrowed reference.
func (m Match) Node() *devtree.Node { return m.ref.Node() }

// Compare returns the entry's comparison predicate.
func (m Match) Compare() CompareFunc { return m.compare }

// MatchList is the ordered, append-only set of matches handed to a
// binding framework. Order is significant: port entries precede
// encoder entries, which determines bind order downstream. The list
// owns one handle per entry; Close releases them all.
type MatchList struct {
	entries []Match
}

// Add appends an entry, acquiring a fresh handle to the node.
func (l *MatchList) Add(ref *devtree.Ref, compare CompareFunc) {
	l.entries = append(l.entries, Match{ref: ref.Clone(), compare: compare})
}

// Len returns the number of entries.
func (l *MatchList) Len() int { return len(l.entries) }

// Entries returns the matches in append order. The slice and its
// handles remain owned by the list.
func (l *MatchList) Entries() []Match { return l.entries }

// Close releases every handle the list owns. A closed list must not be
// used again.
func (l *MatchList) Close() {
	for _, m := range l.entries {
		m.ref.Release()
	}
	l.entries = nil
}

// Binder is the component-binding framework boundary. Bind receives
// the completed, internally consistent match list and takes ownership
// of it; implementations must Close the list when done with it.
type Binder interface {
	Bind(dev *devtree.Ref, matches *MatchList) error
}

// ComponentProbe parses the device's "ports" reference list and builds
// the ordered match list for all pipeline components associated with
// the device, then submits it to the binder.
//
// The scan runs in two passes over the same list, and the order is
// load-bearing: controller ports are matched first so that
// [Resolver.PossibleControllers] called from encoder bind paths sees
// the controllers already registered, then the encoders attached to
// each port's remote endpoints are appended behind them.
//
// Ports whose parent device is disabled are skipped in both passes.
// Remote devices that are missing or disabled are skipped silently; a
// remote whose own parent is disabled is reported and skipped. Errors:
// MISSING_TOPOLOGY when the device carries no ports list at all,
// NO_AVAILABLE_PORT when the list is present but nothing in it is
// usable. On error no partial list reaches the binder.
func (r *Resolver) ComponentProbe(dev *devtree.Ref, compare CompareFunc, binder Binder) error {
	if dev == nil || compare == nil || binder == nil {
		return pterrors.New(pterrors.ErrCodeInvalidInput, "component probe needs a device, predicate and binder")
	}

	matches := &MatchList{}

	// Pass 1: the controller ports themselves.
	i := 0
	for ; ; i++ {
		port := dev.PortsRef(i)
		if port == nil {
			break
		}
		if !port.ParentAvailable() {
			port.Release()
			continue
		}
		matches.Add(port, compare)
		port.Release()
	}

	if i == 0 {
		matches.Close()
		return pterrors.New(pterrors.ErrCodeMissingTopology, "%s: missing ports property", dev.Path())
	}
	if matches.Len() == 0 {
		matches.Close()
		return pterrors.New(pterrors.ErrCodeNoAvailablePort, "%s: no available port", dev.Path())
	}

	// Pass 2: the encoders attached to each port's remote endpoints.
	for i := 0; ; i++ {
		port := dev.PortsRef(i)
		if port == nil {
			break
		}
		if !port.ParentAvailable() {
			port.Release()
			continue
		}
		for ep := range port.Children() {
			remote := ep.RemotePortParent()
			if remote == nil || !remote.Available() {
				remote.Release()
				continue
			}
			if !remote.ParentAvailable() {
				r.Logger.Warn("parent device is not available", "node", remote.Path())
				remote.Release()
				continue
			}
			matches.Add(remote, compare)
			remote.Release()
		}
		port.Release()
	}

	return binder.Bind(dev, matches)
}
