package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipetree/pipetree/pkg/devtree"
	ptio "github.com/pipetree/pipetree/pkg/io"
	"github.com/pipetree/pipetree/pkg/pipeline"
	"github.com/pipetree/pipetree/pkg/render"
)

// renderOpts holds the flag values for the render command.
type renderOpts struct {
	output   string
	format   string
	detailed bool
	resolve  bool
	device   string
	fromJSON string
}

// newRenderCmd creates the render command: draw a device graph as a
// node-link diagram, optionally annotated with resolved topology
// information.
func newRenderCmd() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render a device graph to SVG, PNG, or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "graph.svg", "output file path")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, png, or dot (default inferred from output path)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include full node paths in labels")
	cmd.Flags().BoolVar(&opts.resolve, "resolve", false, "resolve the pipeline first and annotate the graph")
	cmd.Flags().StringVarP(&opts.device, "device", "d", "", "pipeline device path (with --resolve)")
	cmd.Flags().StringVar(&opts.fromJSON, "from-json", "", "annotate from a resolve result exported with 'resolve --json'")
	cmd.MarkFlagsMutuallyExclusive("resolve", "from-json")

	return cmd
}

func runRender(cmd *cobra.Command, manifestPath string, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())
	printFile(manifestPath)

	tree, pl, err := devtree.Load(manifestPath)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(opts.output), ".")
	}

	ropts := render.Options{Detailed: opts.detailed}
	if opts.fromJSON != "" {
		result, err := ptio.ImportJSON(opts.fromJSON)
		if err != nil {
			return err
		}
		logger.Debug("loaded annotations", "path", opts.fromJSON, "device", result.Report.Device)
		ropts.Report = &result.Report
	}
	if opts.resolve {
		runner := pipeline.NewRunner(logger)
		result, err := runner.Resolve(cmd.Context(), tree, pl, pipeline.Options{
			Device: opts.device,
			Logger: logger,
		})
		if err != nil {
			printWarning("resolve failed, rendering without annotations: %v", err)
		} else {
			ropts.Report = &result.Report
		}
	}

	dot := render.ToDOT(tree, ropts)

	p := newProgress(logger)
	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.SVG(dot)
	case "png":
		data, err = render.PNG(dot)
	default:
		return fmt.Errorf("unsupported format %q (want svg, png, or dot)", format)
	}
	if err != nil {
		printError("render failed: %v", err)
		return err
	}
	p.done(fmt.Sprintf("Rendered %s", format))

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("wrote %s (%d bytes)", opts.output, len(data))
	return nil
}
