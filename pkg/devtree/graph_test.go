package devtree

import "testing"

// graphManifest wires one encoder with a ports container (input
// port@0 with two endpoints, output port@1) to two controllers and a
// panel, plus a device with bare port children and no container.
const graphManifest = `
[[node]]
path = "/dc0"
compatible = "acme,dc"

[[node]]
path = "/dc0/port"

[[node]]
path = "/dc0/port/endpoint"
remote = "/enc/ports/port@0/endpoint@0"

[[node]]
path = "/dc1"
compatible = "acme,dc"

[[node]]
path = "/dc1/port"

[[node]]
path = "/dc1/port/endpoint"
remote = "/enc/ports/port@0/endpoint@1"

[[node]]
path = "/enc"
compatible = "acme,encoder"

[[node]]
path = "/enc/ports"

[[node]]
path = "/enc/ports/port@0"
reg = 0

[[node]]
path = "/enc/ports/port@0/endpoint@0"
reg = 0
remote = "/dc0/port/endpoint"

[[node]]
path = "/enc/ports/port@0/endpoint@1"
reg = 1
remote = "/dc1/port/endpoint"

[[node]]
path = "/enc/ports/port@1"
reg = 1

[[node]]
path = "/enc/ports/port@1/endpoint"
remote = "/panel/port/endpoint"

[[node]]
path = "/panel"
compatible = "acme,panel"

[[node]]
path = "/panel/port"

[[node]]
path = "/panel/port/endpoint"
remote = "/enc/ports/port@1/endpoint"

[[node]]
path = "/off-panel"
compatible = "acme,panel"
status = "disabled"

[[node]]
path = "/off-panel/port"

[[node]]
path = "/off-panel/port/endpoint"
remote = "/enc/ports/port@1/endpoint"

[[node]]
path = "/no-graph"
compatible = "acme,thing"
`

func TestEndpointsIteration(t *testing.T) {
	tree := mustParse(t, graphManifest)

	enc := tree.Lookup("/enc")
	defer enc.Release()

	if !enc.GraphPresent() {
		t.Fatal("GraphPresent() = false for node with ports container")
	}

	var got []EndpointInfo
	for ep := range enc.Endpoints() {
		got = append(got, ep.ParseEndpoint())
	}
	want := []EndpointInfo{{0, 0}, {0, 1}, {1, 0}}
	if len(got) != len(want) {
		t.Fatalf("Endpoints() yielded %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("endpoint[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEndpointsWithoutContainer(t *testing.T) {
	tree := mustParse(t, graphManifest)

	panel := tree.Lookup("/panel")
	defer panel.Release()

	if !panel.GraphPresent() {
		t.Fatal("GraphPresent() = false for node with bare port child")
	}

	count := 0
	for range panel.Endpoints() {
		count++
	}
	if count != 1 {
		t.Errorf("Endpoints() yielded %d, want 1", count)
	}

	none := tree.Lookup("/no-graph")
	defer none.Release()
	if none.GraphPresent() {
		t.Error("GraphPresent() = true for graphless node")
	}
}

func TestParseEndpointDefaults(t *testing.T) {
	tree := mustParse(t, graphManifest)

	// Neither /panel/port nor its endpoint declare a unit index.
	panel := tree.Lookup("/panel")
	defer panel.Release()

	for ep := range panel.Endpoints() {
		if info := ep.ParseEndpoint(); info != (EndpointInfo{0, 0}) {
			t.Errorf("ParseEndpoint() = %+v, want zero values", info)
		}
	}
}

func TestRemoteResolution(t *testing.T) {
	tree := mustParse(t, graphManifest)

	enc := tree.Lookup("/enc")
	defer enc.Release()

	for ep := range enc.Endpoints() {
		if ep.ParseEndpoint() != (EndpointInfo{0, 0}) {
			continue
		}

		remoteEp := ep.RemoteEndpoint()
		if remoteEp == nil || remoteEp.Path() != "/dc0/port/endpoint" {
			t.Fatalf("RemoteEndpoint() = %v", remoteEp)
		}
		remoteEp.Release()

		port := ep.RemotePort()
		if port == nil || port.Path() != "/dc0/port" {
			t.Fatalf("RemotePort() = %v", port)
		}
		port.Release()

		dev := ep.RemotePortParent()
		if dev == nil || dev.Path() != "/dc0" {
			t.Fatalf("RemotePortParent() = %v", dev)
		}
		dev.Release()
	}
}

func TestRemotePortParentSkipsContainer(t *testing.T) {
	tree := mustParse(t, graphManifest)

	dc0 := tree.Lookup("/dc0")
	defer dc0.Release()

	for ep := range dc0.Endpoints() {
		dev := ep.RemotePortParent()
		if dev == nil || dev.Path() != "/enc" {
			t.Fatalf("RemotePortParent() = %v, want /enc past the ports container", dev)
		}
		dev.Release()
	}
}

func TestRemoteNode(t *testing.T) {
	tree := mustParse(t, graphManifest)

	enc := tree.Lookup("/enc")
	defer enc.Release()

	tests := []struct {
		name     string
		port     int
		endpoint int
		want     string // "" means nil
	}{
		{"first endpoint of port 0", 0, 0, "/dc0"},
		{"second endpoint of port 0", 0, 1, "/dc1"},
		{"wildcard endpoint", 0, -1, "/dc0"},
		{"output port", 1, -1, "/panel"},
		{"no such port", 5, -1, ""},
		{"no such endpoint", 0, 7, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := enc.RemoteNode(tt.port, tt.endpoint)
			if tt.want == "" {
				if remote != nil {
					t.Fatalf("RemoteNode(%d, %d) = %s, want nil", tt.port, tt.endpoint, remote.Path())
				}
				return
			}
			if remote == nil {
				t.Fatalf("RemoteNode(%d, %d) = nil, want %s", tt.port, tt.endpoint, tt.want)
			}
			if remote.Path() != tt.want {
				t.Errorf("RemoteNode(%d, %d) = %s, want %s", tt.port, tt.endpoint, remote.Path(), tt.want)
			}
			remote.Release()
		})
	}
}

func TestRemoteNodeSkipsDisabledDevice(t *testing.T) {
	tree := mustParse(t, graphManifest)

	// The disabled panel's endpoint resolves structurally but the
	// device must be reported as absent.
	off := tree.Lookup("/off-panel")
	defer off.Release()

	remote := off.RemoteNode(0, -1)
	if remote == nil || remote.Path() != "/enc" {
		t.Fatalf("RemoteNode() from disabled device = %v, want /enc", remote)
	}
	remote.Release()

	// Point a fresh endpoint at the disabled panel instead.
	tree2 := mustParse(t, `
[[node]]
path = "/src/port"
[[node]]
path = "/src/port/endpoint"
remote = "/dead/port/endpoint"
[[node]]
path = "/dead"
status = "disabled"
[[node]]
path = "/dead/port"
[[node]]
path = "/dead/port/endpoint"
`)
	src := tree2.Lookup("/src")
	defer src.Release()
	if remote := src.RemoteNode(0, -1); remote != nil {
		t.Errorf("RemoteNode() to disabled device = %s, want nil", remote.Path())
	}
}

func TestPortsRef(t *testing.T) {
	tree := mustParse(t, `
[[node]]
path = "/mdp"
ports = ["/dc/port", "/missing/port"]
[[node]]
path = "/dc/port"
`)

	mdp := tree.Lookup("/mdp")
	defer mdp.Release()

	if p := mdp.PortsRef(0); p == nil || p.Path() != "/dc/port" {
		t.Fatalf("PortsRef(0) = %v, want /dc/port", p)
	} else {
		p.Release()
	}
	if p := mdp.PortsRef(1); p != nil {
		t.Errorf("PortsRef(1) = %s, want nil for dangling entry", p.Path())
	}
	if p := mdp.PortsRef(2); p != nil {
		t.Errorf("PortsRef(2) = %s, want nil past the end", p.Path())
	}
}

func TestGraphTraversalRefBalance(t *testing.T) {
	tree := mustParse(t, graphManifest)

	enc := tree.Lookup("/enc")
	for ep := range enc.Endpoints() {
		if r := ep.RemotePortParent(); r != nil {
			r.Release()
		}
	}
	if r := enc.RemoteNode(0, -1); r != nil {
		r.Release()
	}
	enc.Release()

	acq, rel := tree.RefStats()
	if acq != rel {
		t.Errorf("RefStats() = %d acquires, %d releases, want balance", acq, rel)
	}
}
