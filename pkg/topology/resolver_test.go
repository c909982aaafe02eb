package topology

import (
	"testing"

	"github.com/pipetree/pipetree/pkg/devtree"
)

// maskManifest: an encoder whose input endpoints reach two
// controllers, one disabled endpoint, and a variant with a dangling
// remote.
const maskManifest = `
[[node]]
path = "/dc0/port"
[[node]]
path = "/dc0/port/endpoint"
remote = "/enc/port@0/endpoint@0"

[[node]]
path = "/dc1/port"
[[node]]
path = "/dc1/port/endpoint"
remote = "/enc/port@0/endpoint@1"

[[node]]
path = "/enc"
[[node]]
path = "/enc/port@0"
reg = 0
[[node]]
path = "/enc/port@0/endpoint@0"
reg = 0
remote = "/dc0/port/endpoint"
[[node]]
path = "/enc/port@0/endpoint@1"
reg = 1
remote = "/dc1/port/endpoint"
[[node]]
path = "/enc/port@0/endpoint@2"
reg = 2
status = "disabled"
remote = "/dc0/port/endpoint"

[[node]]
path = "/broken"
[[node]]
path = "/broken/port"
[[node]]
path = "/broken/port/endpoint@0"
reg = 0
remote = "/dc0/port/endpoint"
[[node]]
path = "/broken/port/endpoint@1"
reg = 1
remote = "/nowhere/endpoint"

[[node]]
path = "/bare"
`

func newTestResolver(t *testing.T, manifest string) (*Resolver, *devtree.Tree) {
	t.Helper()
	tree := mustParse(t, manifest)
	res := NewResolver(nil)
	res.Controllers.Register(&Controller{Name: "dc0", Port: portNode(t, tree, "/dc0/port")})
	res.Controllers.Register(&Controller{Name: "dc1", Port: portNode(t, tree, "/dc1/port")})
	return res, tree
}

func TestPossibleControllers(t *testing.T) {
	res, tree := newTestResolver(t, maskManifest)

	enc := tree.Lookup("/enc")
	defer enc.Release()

	// Both endpoints resolve; the disabled one is skipped without
	// spoiling the union.
	if got := res.PossibleControllers(enc); got != 0b11 {
		t.Errorf("PossibleControllers() = 0x%x, want 0x3", got)
	}
}

func TestPossibleControllersFailFast(t *testing.T) {
	res, tree := newTestResolver(t, maskManifest)

	broken := tree.Lookup("/broken")
	defer broken.Release()

	// One endpoint reaches dc0 but the second one dangles: the scan
	// is invalidated as a whole, never a partial union.
	if got := res.PossibleControllers(broken); got != 0 {
		t.Errorf("PossibleControllers() with dangling remote = 0x%x, want 0", got)
	}
}

func TestPossibleControllersUnboundRemotes(t *testing.T) {
	// Everything resolves but no controller is registered for any of
	// the remote ports: the union of empty masks is empty.
	tree := mustParse(t, maskManifest)
	res := NewResolver(nil)

	enc := tree.Lookup("/enc")
	defer enc.Release()

	if got := res.PossibleControllers(enc); got != 0 {
		t.Errorf("PossibleControllers() with no registered controllers = 0x%x, want 0", got)
	}
}

func TestPossibleControllersNoEndpoints(t *testing.T) {
	res, tree := newTestResolver(t, maskManifest)

	bare := tree.Lookup("/bare")
	defer bare.Release()

	if got := res.PossibleControllers(bare); got != 0 {
		t.Errorf("PossibleControllers() on graphless node = 0x%x, want 0", got)
	}
}

func TestPossibleControllersRefBalance(t *testing.T) {
	res, tree := newTestResolver(t, maskManifest)

	for _, path := range []string{"/enc", "/broken", "/bare"} {
		ref := tree.Lookup(path)
		res.PossibleControllers(ref)
		ref.Release()
	}

	acq, rel := tree.RefStats()
	if acq != rel {
		t.Errorf("RefStats() = %d acquires, %d releases, want balance", acq, rel)
	}
}
