package topology

import (
	"sync"

	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// MaxControllers is the number of controllers a possible-controllers
// bitmask can represent.
const MaxControllers = 32

// Controller is a display pipeline controller bound to a specific
// output port. The port back-reference is set once at registration and
// read-only thereafter; its position in the list's registration order
// is its bitmask index.
type Controller struct {
	Name string
	Port *devtree.Node // bound port, identity comparison only
}

// ControllerList is the ordered collection of registered controllers.
// Enumeration order is registration order and stays stable during a
// scan; any number of concurrent readers may enumerate while no
// registration is in flight.
type ControllerList struct {
	mu   sync.RWMutex
	list []*Controller
}

// Register appends a controller. Registration order determines the
// controller's bitmask index, so callers must register in bind order.
func (l *ControllerList) Register(c *Controller) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.list) >= MaxControllers {
		return pterrors.New(pterrors.ErrCodeUnsupported,
			"controller table full (max %d)", MaxControllers)
	}
	l.list = append(l.list, c)
	return nil
}

// Len returns the number of registered controllers.
func (l *ControllerList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.list)
}

// All returns a snapshot of the registered controllers in registration
// order.
func (l *ControllerList) All() []*Controller {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Controller, len(l.list))
	copy(out, l.list)
	return out
}

// PortMask returns the bitmask with bit i set iff the i-th registered
// controller is bound to the given port node. The empty mask means no
// controller matched, which is a normal outcome, not a failure. The
// index is derived from the current enumeration order on every call
// and must not be cached across pipeline reconfiguration.
func (l *ControllerList) PortMask(port *devtree.Node) uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, c := range l.list {
		if c.Port == port {
			return 1 << i
		}
	}
	return 0
}

// Panel is a directly driven display sink, owned by the panel registry.
type Panel struct {
	Name string
}

// Bridge is a signal-converting relay sink, owned by the bridge registry.
type Bridge struct {
	Name string
}

// PanelRegistry maps device nodes to registered panels by identity.
type PanelRegistry struct {
	mu sync.RWMutex
	m  map[*devtree.Node]*Panel
}

// Add registers a panel for the given node.
func (r *PanelRegistry) Add(n *devtree.Node, p *Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.m = make(map[*devtree.Node]*Panel)
	}
	r.m[n] = p
}

// Lookup returns the panel registered for the node, or nil.
func (r *PanelRegistry) Lookup(n *devtree.Node) *Panel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m[n]
}

// BridgeRegistry maps device nodes to registered bridges by identity.
type BridgeRegistry struct {
	mu sync.RWMutex
	m  map[*devtree.Node]*Bridge
}

// Add registers a bridge for the given node.
func (r *BridgeRegistry) Add(n *devtree.Node, b *Bridge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.m = make(map[*devtree.Node]*Bridge)
	}
	r.m[n] = b
}

// Lookup returns the bridge registered for the node, or nil.
func (r *BridgeRegistry) Lookup(n *devtree.Node) *Bridge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m[n]
}
