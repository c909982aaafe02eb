package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/pipetree/pipetree/pkg/devtree"
	"github.com/pipetree/pipetree/pkg/topology"
)

// Registrar is a minimal in-process binding framework. It walks a
// completed match list in submission order, registers a controller for
// every claimed port entry, and records encoder nodes for the resolve
// stage. Registration order therefore follows match order, which in
// turn fixes each controller's bitmask index.
//
// The real binding framework a production integration would plug in
// here is expected to instantiate driver components; the Registrar
// only mirrors the registration side effects the resolvers depend on.
type Registrar struct {
	controllers *topology.ControllerList
	logger      *log.Logger

	matches  []MatchReport
	encoders []*devtree.Node
}

// NewRegistrar creates a registrar that registers controllers into the
// given list. A nil logger is replaced with a discarding one.
func NewRegistrar(controllers *topology.ControllerList, logger *log.Logger) *Registrar {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registrar{controllers: controllers, logger: logger}
}

// Bind implements [topology.Binder]. It takes ownership of the match
// list and closes it before returning.
func (g *Registrar) Bind(dev *devtree.Ref, matches *topology.MatchList) error {
	defer matches.Close()

	for _, m := range matches.Entries() {
		n := m.Node()
		if !m.Compare()(n) {
			g.logger.Debug("no component claims node", "node", n.Path())
			continue
		}

		if n.NameIs("port") {
			ctrl := &topology.Controller{Name: n.Parent().BaseName(), Port: n}
			if err := g.controllers.Register(ctrl); err != nil {
				return err
			}
			g.matches = append(g.matches, MatchReport{Path: n.Path(), Kind: "port"})
			g.logger.Debug("registered controller", "name", ctrl.Name, "port", n.Path())
			continue
		}

		g.encoders = append(g.encoders, n)
		g.matches = append(g.matches, MatchReport{Path: n.Path(), Kind: "encoder"})
		g.logger.Debug("bound encoder", "node", n.Path())
	}

	return nil
}

// Encoders returns the encoder nodes bound during Bind, in bind order,
// as borrowed references.
func (g *Registrar) Encoders() []*devtree.Node { return g.encoders }

// Matches returns the per-entry bind record, in submission order.
func (g *Registrar) Matches() []MatchReport { return g.matches }
