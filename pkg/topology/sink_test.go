package topology

import (
	"testing"

	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// sinkManifest covers the graph conventions sink resolution accepts:
// a standard ports container, a lone port child, a downstream device
// attached as a plain child, and a node with no connection at all.
const sinkManifest = `
[[node]]
path = "/enc"
[[node]]
path = "/enc/ports"
[[node]]
path = "/enc/ports/port@1"
reg = 1
[[node]]
path = "/enc/ports/port@1/endpoint"
remote = "/panel/port/endpoint"

[[node]]
path = "/panel"
[[node]]
path = "/panel/port"
[[node]]
path = "/panel/port/endpoint"
remote = "/enc/ports/port@1/endpoint"

[[node]]
path = "/lone"
[[node]]
path = "/lone/port"
[[node]]
path = "/lone/port/endpoint"
remote = "/bridge/port/endpoint"

[[node]]
path = "/bridge"
[[node]]
path = "/bridge/port"
[[node]]
path = "/bridge/port/endpoint"
remote = "/lone/port/endpoint"

[[node]]
path = "/legacy"
[[node]]
path = "/legacy/panel-child"

[[node]]
path = "/isolated"

[[node]]
path = "/unconnected"
[[node]]
path = "/unconnected/ports"
[[node]]
path = "/unconnected/ports/port@1"
reg = 1
[[node]]
path = "/unconnected/ports/port@1/endpoint"
remote = "/nowhere"
`

func TestFindSinkPanel(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)
	res.Panels.Add(portNode(t, tree, "/panel"), &Panel{Name: "lvds"})

	enc := tree.Lookup("/enc")
	defer enc.Release()

	sink, err := res.FindSink(enc, 1, -1, AcceptPanel|AcceptBridge)
	if err != nil {
		t.Fatalf("FindSink() error = %v", err)
	}
	if sink.Kind != SinkPanel || sink.Panel == nil || sink.Panel.Name != "lvds" {
		t.Errorf("FindSink() = %+v, want panel lvds", sink)
	}
	if sink.Bridge != nil {
		t.Error("panel and bridge results must be mutually exclusive")
	}
}

func TestFindSinkPanelWinsOverBridge(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)
	n := portNode(t, tree, "/panel")
	res.Panels.Add(n, &Panel{Name: "lvds"})
	res.Bridges.Add(n, &Bridge{Name: "also-a-bridge"})

	enc := tree.Lookup("/enc")
	defer enc.Release()

	sink, err := res.FindSink(enc, 1, -1, AcceptPanel|AcceptBridge)
	if err != nil {
		t.Fatalf("FindSink() error = %v", err)
	}
	if sink.Kind != SinkPanel {
		t.Errorf("FindSink() kind = %v, want panel to win", sink.Kind)
	}
}

func TestFindSinkBridgeOnly(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)
	n := portNode(t, tree, "/panel")
	res.Panels.Add(n, &Panel{Name: "lvds"})
	res.Bridges.Add(n, &Bridge{Name: "edp"})

	enc := tree.Lookup("/enc")
	defer enc.Release()

	sink, err := res.FindSink(enc, 1, -1, AcceptBridge)
	if err != nil {
		t.Fatalf("FindSink() error = %v", err)
	}
	if sink.Kind != SinkBridge || sink.Bridge.Name != "edp" {
		t.Errorf("FindSink(AcceptBridge) = %+v, want bridge edp", sink)
	}
}

func TestFindSinkLonePortChild(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)
	res.Bridges.Add(portNode(t, tree, "/bridge"), &Bridge{Name: "edp"})

	lone := tree.Lookup("/lone")
	defer lone.Release()

	// The lone "port" child carries no unit index, so the graph entry
	// is port 0 rather than the conventional output port 1.
	sink, err := res.FindSink(lone, 0, -1, AcceptBridge)
	if err != nil {
		t.Fatalf("FindSink() error = %v", err)
	}
	if sink.Kind != SinkBridge {
		t.Errorf("FindSink() kind = %v, want bridge", sink.Kind)
	}
}

func TestFindSinkChildAsRemote(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)
	res.Panels.Add(portNode(t, tree, "/legacy/panel-child"), &Panel{Name: "builtin"})

	legacy := tree.Lookup("/legacy")
	defer legacy.Release()

	// No graph structure at all: the downstream device hangs off the
	// node as a plain child. Port and endpoint indices are ignored.
	sink, err := res.FindSink(legacy, 1, -1, AcceptPanel)
	if err != nil {
		t.Fatalf("FindSink() error = %v", err)
	}
	if sink.Kind != SinkPanel || sink.Panel.Name != "builtin" {
		t.Errorf("FindSink() = %+v, want panel builtin", sink)
	}
}

func TestFindSinkDefer(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil) // nothing registered

	enc := tree.Lookup("/enc")
	defer enc.Release()

	_, err := res.FindSink(enc, 1, -1, AcceptPanel|AcceptBridge)
	if !pterrors.IsDeferProbe(err) {
		t.Errorf("FindSink() with unregistered remote error = %v, want DEFER_PROBE", err)
	}
}

func TestFindSinkErrors(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)

	tests := []struct {
		name     string
		node     string
		port     int
		accept   Accept
		wantCode pterrors.Code
	}{
		{"no connection described", "/isolated", 1, AcceptPanel, pterrors.ErrCodeDeviceNotFound},
		{"dangling remote", "/unconnected", 1, AcceptPanel, pterrors.ErrCodeDeviceNotFound},
		{"no such port", "/enc", 4, AcceptPanel, pterrors.ErrCodeDeviceNotFound},
		{"empty accept mask", "/enc", 1, 0, pterrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := tree.Lookup(tt.node)
			defer node.Release()

			_, err := res.FindSink(node, tt.port, -1, tt.accept)
			if !pterrors.Is(err, tt.wantCode) {
				t.Errorf("FindSink() error = %v, want code %v", err, tt.wantCode)
			}
		})
	}

	if _, err := res.FindSink(nil, 1, -1, AcceptPanel); !pterrors.Is(err, pterrors.ErrCodeInvalidInput) {
		t.Errorf("FindSink(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestFindSinkRefBalance(t *testing.T) {
	tree := mustParse(t, sinkManifest)
	res := NewResolver(nil)
	res.Panels.Add(portNode(t, tree, "/panel"), &Panel{Name: "lvds"})
	res.Panels.Add(portNode(t, tree, "/legacy/panel-child"), &Panel{Name: "builtin"})

	for _, path := range []string{"/enc", "/lone", "/legacy", "/isolated", "/unconnected"} {
		node := tree.Lookup(path)
		res.FindSink(node, 1, -1, AcceptPanel|AcceptBridge)
		node.Release()
	}

	acq, rel := tree.RefStats()
	if acq != rel {
		t.Errorf("RefStats() = %d acquires, %d releases, want balance", acq, rel)
	}
}

func TestSinkKindString(t *testing.T) {
	tests := []struct {
		kind SinkKind
		want string
	}{
		{SinkNone, "none"},
		{SinkPanel, "panel"},
		{SinkBridge, "bridge"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("SinkKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
