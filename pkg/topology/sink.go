package topology

import (
	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// Accept selects which sink variants a FindSink caller is prepared to
// handle. At least one variant must be requested.
type Accept uint8

const (
	// AcceptPanel requests panel resolution.
	AcceptPanel Accept = 1 << iota
	// AcceptBridge requests bridge resolution.
	AcceptBridge
)

// SinkKind tags a resolved sink.
type SinkKind int

const (
	// SinkNone means no sink was resolved.
	SinkNone SinkKind = iota
	// SinkPanel means a panel was resolved.
	SinkPanel
	// SinkBridge means a bridge was resolved.
	SinkBridge
)

// String returns the kind's lower-case name.
func (k SinkKind) String() string {
	switch k {
	case SinkPanel:
		return "panel"
	case SinkBridge:
		return "bridge"
	default:
		return "none"
	}
}

// Sink is the tagged result of downstream sink resolution. Panel and
// bridge are mutually exclusive: exactly one of the two fields is
// non-nil when Kind is not SinkNone.
type Sink struct {
	Kind   SinkKind
	Panel  *Panel
	Bridge *Bridge
}

// sinkShape classifies the graph convention an output node follows
// before any resolution happens, so the dispatch below is explicit
// rather than a cascade of guesses.
type sinkShape int

const (
	// shapeStandardGraph: the node carries regular graph structure
	// (a "ports" container, or bare port children).
	shapeStandardGraph sinkShape = iota
	// shapeLonePortChild: no "ports" container and exactly one child,
	// named "port". Standard graph resolution applies to it directly.
	shapeLonePortChild
	// shapeChildAsRemote: non-standard convention where the downstream
	// device is attached as a plain child node instead of being linked
	// through endpoints. The first available non-"port" child is the
	// remote.
	shapeChildAsRemote
	// shapeNoGraph: the node describes no connection at all.
	shapeNoGraph
)

// classifySinkShape inspects the output node and picks the convention
// to resolve it under. For shapeChildAsRemote the returned ref is the
// owned handle to the remote child; it is nil for every other shape.
func classifySinkShape(node *devtree.Ref) (sinkShape, *devtree.Ref) {
	if ports := node.Child("ports"); ports != nil {
		ports.Release()
		return shapeStandardGraph, nil
	}

	if port := node.Child("port"); port != nil {
		port.Release()
		if node.Node().ChildCount() == 1 {
			return shapeLonePortChild, nil
		}
	}

	var remote *devtree.Ref
	for c := range node.AvailableChildren() {
		if c.Node().NameIs("port") {
			continue
		}
		remote = c.Clone()
		break
	}
	if remote != nil {
		return shapeChildAsRemote, remote
	}

	if node.GraphPresent() {
		return shapeStandardGraph, nil
	}
	return shapeNoGraph, nil
}

// FindSink resolves the downstream display sink connected to an output
// node at the given port and endpoint indices. An endpoint index of -1
// matches the first endpoint of the port.
//
// Graphs that omit the standard "ports" container are tolerated: a
// lone "port" child is treated as the graph entry point, and a
// non-port child is treated as the remote device itself (see
// classifySinkShape). Whether the standard path resolves anything is
// checked only after confirming graph structure is present, since a
// graphless node is an expected configuration, not a noisy error.
//
// The accept mask selects which registries are consulted; panel wins
// over bridge and the two outcomes are mutually exclusive. Errors:
// INVALID_INPUT when node is absent or the mask is empty,
// DEVICE_NOT_FOUND when no remote node can be resolved at all,
// DEFER_PROBE when a remote exists but no accepted registry recognizes
// it yet; the caller should retry once more components have
// registered.
func (r *Resolver) FindSink(node *devtree.Ref, port, endpoint int, accept Accept) (Sink, error) {
	if node == nil {
		return Sink{}, pterrors.New(pterrors.ErrCodeInvalidInput, "sink resolution needs an output node")
	}
	if accept&(AcceptPanel|AcceptBridge) == 0 {
		return Sink{}, pterrors.New(pterrors.ErrCodeInvalidInput, "sink resolution needs at least one accepted variant")
	}

	var remote *devtree.Ref
	shape, child := classifySinkShape(node)
	switch shape {
	case shapeChildAsRemote:
		remote = child
	case shapeStandardGraph, shapeLonePortChild:
		if !node.GraphPresent() {
			return Sink{}, pterrors.New(pterrors.ErrCodeDeviceNotFound, "%s: no graph present", node.Path())
		}
		remote = node.RemoteNode(port, endpoint)
	case shapeNoGraph:
		return Sink{}, pterrors.New(pterrors.ErrCodeDeviceNotFound, "%s: no connection described", node.Path())
	}

	if remote == nil {
		return Sink{}, pterrors.New(pterrors.ErrCodeDeviceNotFound, "%s: no remote node found", node.Path())
	}
	defer remote.Release()

	if accept&AcceptPanel != 0 {
		if p := r.Panels.Lookup(remote.Node()); p != nil {
			return Sink{Kind: SinkPanel, Panel: p}, nil
		}
	}
	if accept&AcceptBridge != 0 {
		if b := r.Bridges.Lookup(remote.Node()); b != nil {
			return Sink{Kind: SinkBridge, Bridge: b}, nil
		}
	}

	return Sink{}, pterrors.New(pterrors.ErrCodeDeferProbe,
		"%s: remote %s is not registered yet", node.Path(), remote.Path())
}
