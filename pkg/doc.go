// Package pkg provides the core libraries for Pipetree display pipeline
// topology resolution.
//
// # Overview
//
// Pipetree resolves the physical topology of a display pipeline from a
// device graph manifest: which display controllers can drive which
// ports, the order components must bind in, the endpoint a controller
// is actively driving an encoder through, and the panel or bridge at
// the downstream end of a port. The pkg directory is organized into
// five main areas:
//
//  1. [devtree] - Device graph model (nodes, ports, endpoints, manifests)
//  2. [topology] - Topology resolution (controller masks, probing, sinks)
//  3. [pipeline] - Orchestration (load → probe → resolve)
//  4. [render] - Graph visualization (DOT, SVG, PNG via Graphviz)
//  5. [errors] - Structured error codes shared by all layers
//
// # Architecture
//
// The typical data flow through Pipetree:
//
//	TOML manifest
//	     ↓
//	[devtree] package (parse into a tree of nodes with graph links)
//	     ↓
//	[topology] package (component probe, controller masks, sink lookup)
//	     ↓
//	[pipeline] package (orchestrate and report)
//	     ↓
//	CLI report / HTTP JSON / rendered diagram
//
// # Quick Start
//
// Load a manifest and resolve its pipeline:
//
//	import (
//	    "context"
//	    "github.com/pipetree/pipetree/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    ManifestPath: "examples/board.toml",
//	})
//	if err != nil {
//	    // handle
//	}
//	for _, enc := range result.Report.Encoders {
//	    fmt.Printf("%s: possible 0x%x\n", enc.Name, enc.PossibleMask)
//	}
//
// # Main Packages
//
// [devtree] - The device graph model. Trees are immutable after parse;
// nodes are borrowed through reference-counted handles whose acquire
// and release totals must balance, which the tree tracks.
//
// [topology] - The five resolution operations: controller bitmask for a
// port, possible-controllers mask for an encoder, two-pass component
// probe, active encoder endpoint, and panel-or-bridge sink lookup with
// legacy graph shapes handled.
//
// [pipeline] - Orchestration shared by the CLI and HTTP entry points,
// so both produce identical reports for the same manifest.
//
// [render] - Node-link diagrams of device graphs using Graphviz, with
// optional resolved-topology annotations.
//
// [errors] - Structured errors with stable machine-readable codes. The
// DEFER_PROBE code marks the one retryable condition: a sink's driver
// has not registered yet.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/topology/... # Specific package
//	go test -run Example       # Examples only
//
// [devtree]: https://pkg.go.dev/github.com/pipetree/pipetree/pkg/devtree
// [topology]: https://pkg.go.dev/github.com/pipetree/pipetree/pkg/topology
// [pipeline]: https://pkg.go.dev/github.com/pipetree/pipetree/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/pipetree/pipetree/pkg/render
// [errors]: https://pkg.go.dev/github.com/pipetree/pipetree/pkg/errors
package pkg
