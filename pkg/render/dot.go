// Package render draws device graphs as node-link diagrams.
//
// Devices become clustered boxes containing their ports and endpoints,
// remote links become edges between endpoints, and resolved topology
// information (controller masks, sinks) can be annotated onto the
// nodes. DOT output is rendered to SVG or PNG using Graphviz.
//
//	dot := render.ToDOT(tree, render.Options{})
//	svg, err := render.SVG(dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pipetree/pipetree/pkg/devtree"
	"github.com/pipetree/pipetree/pkg/pipeline"
)

// Options configures device graph rendering.
type Options struct {
	// Detailed includes node paths and unit indices in labels.
	// When false, only base names are shown.
	Detailed bool

	// Report annotates nodes with resolved topology information:
	// controller bitmasks and encoder sinks.
	Report *pipeline.Report
}

// ToDOT converts a device tree to Graphviz DOT format. Devices (nodes
// with a compatible string) are rendered as clusters holding their
// port and endpoint structure; endpoint remote references become
// edges. Disabled nodes are drawn dashed and grey.
func ToDOT(t *devtree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	annot := annotations(opts.Report)

	cluster := 0
	var edges [][2]string
	for dev := range t.Nodes() {
		if dev.Compatible() == "" {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", cluster)
		cluster++
		fmt.Fprintf(&buf, "    label=%q;\n", clusterLabel(dev, annot, opts.Detailed))
		if !dev.Available() {
			buf.WriteString("    style=dashed;\n    fontcolor=grey;\n")
		}
		writeEndpoints(&buf, t, dev, opts.Detailed, &edges)
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [dir=none];\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeEndpoints emits one DOT node per endpoint under dev and records
// each endpoint's remote link. Links are deduplicated by keeping only
// the direction where the local path sorts first, so a connected pair
// produces a single undirected edge.
func writeEndpoints(buf *bytes.Buffer, t *devtree.Tree, dev *devtree.Node, detailed bool, edges *[][2]string) {
	ref := t.Lookup(dev.Path())
	defer ref.Release()

	seen := 0
	for ep := range ref.Endpoints() {
		seen++
		attrs := []string{fmt.Sprintf("label=%q", endpointLabel(ep, detailed))}
		if !ep.Available() {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(buf, "    %q [%s];\n", ep.Path(), strings.Join(attrs, ", "))

		remote := ep.RemoteEndpoint()
		if remote == nil {
			continue
		}
		if ep.Path() < remote.Path() {
			*edges = append(*edges, [2]string{ep.Path(), remote.Path()})
		}
		remote.Release()
	}
	if seen == 0 {
		// Devices without graph structure still need an anchor node.
		fmt.Fprintf(buf, "    %q [label=%q];\n", dev.Path(), dev.BaseName())
	}
}

func endpointLabel(ep *devtree.Ref, detailed bool) string {
	info := ep.ParseEndpoint()
	label := fmt.Sprintf("port %d / ep %d", info.Port, info.ID)
	if detailed {
		label += "\n" + ep.Path()
	}
	return label
}

func clusterLabel(dev *devtree.Node, annot map[string]string, detailed bool) string {
	label := dev.BaseName()
	if detailed {
		label = dev.Path()
	}
	if dev.Compatible() != "" {
		label += "\n" + dev.Compatible()
	}
	if extra, ok := annot[dev.Path()]; ok {
		label += "\n" + extra
	}
	return label
}

// annotations maps device paths to a short resolved-topology summary.
func annotations(rep *pipeline.Report) map[string]string {
	if rep == nil {
		return nil
	}
	m := make(map[string]string)
	for _, c := range rep.Controllers {
		// The controller is annotated on the port's parent device.
		path := c.Port
		if i := strings.LastIndexByte(path, '/'); i > 0 {
			path = path[:i]
		}
		m[path] = fmt.Sprintf("mask 0x%x", c.Mask)
	}
	for _, e := range rep.Encoders {
		s := fmt.Sprintf("possible 0x%x", e.PossibleMask)
		switch {
		case e.Sink != nil:
			s += fmt.Sprintf(", %s %s", e.Sink.Kind, e.Sink.Name)
		case e.Deferred:
			s += ", sink deferred"
		}
		m[e.Path] = s
	}
	return m
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
