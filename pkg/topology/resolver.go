package topology

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/pipetree/pipetree/pkg/devtree"
)

// Resolver carries the externally-owned registries the resolution
// operations read, plus a logger. There are no package-level
// registries; callers thread a Resolver through instead.
type Resolver struct {
	Controllers *ControllerList
	Panels      *PanelRegistry
	Bridges     *BridgeRegistry
	Logger      *log.Logger
}

// NewResolver creates a Resolver with empty registries. A nil logger
// is replaced with a discarding one.
func NewResolver(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		Controllers: &ControllerList{},
		Panels:      &PanelRegistry{},
		Bridges:     &BridgeRegistry{},
		Logger:      logger,
	}
}

// PossibleControllers scans all endpoints attached to an output port,
// locates their attached controllers, and returns the union of their
// bitmask positions.
//
// Unavailable endpoints are skipped. If any endpoint fails to resolve
// its remote port the whole scan is invalidated and the empty mask is
// returned; a partial union is never produced. A port with no
// endpoints likewise yields 0.
func (r *Resolver) PossibleControllers(port *devtree.Ref) uint32 {
	var mask uint32
	for ep := range port.Endpoints() {
		if !ep.Available() {
			continue
		}
		remote := ep.RemotePort()
		if remote == nil {
			return 0
		}
		mask |= r.Controllers.PortMask(remote.Node())
		remote.Release()
	}
	return mask
}
