package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	ptio "github.com/pipetree/pipetree/pkg/io"
	"github.com/pipetree/pipetree/pkg/pipeline"
)

// resolveOpts holds the flag values for the resolve command.
type resolveOpts struct {
	device       string
	sinkPort     int
	sinkEndpoint int
	jsonOut      string
}

// newResolveCmd creates the resolve command: load a manifest, probe its
// components, and print the resolved topology report for the pipeline
// device.
func newResolveCmd() *cobra.Command {
	opts := &resolveOpts{}

	cmd := &cobra.Command{
		Use:   "resolve <manifest>",
		Short: "Probe components and resolve the display pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.device, "device", "d", "", "pipeline device path (defaults to the manifest's pipeline device)")
	cmd.Flags().IntVar(&opts.sinkPort, "sink-port", pipeline.DefaultSinkPort, "port to follow when resolving encoder sinks")
	cmd.Flags().IntVar(&opts.sinkEndpoint, "sink-endpoint", pipeline.DefaultSinkEndpoint, "endpoint to follow when resolving encoder sinks (-1 for any)")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "also write the full result as JSON to this file")

	return cmd
}

func runResolve(cmd *cobra.Command, manifestPath string, opts *resolveOpts) error {
	logger := loggerFromContext(cmd.Context())
	printFile(manifestPath)

	runner := pipeline.NewRunner(logger)
	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		ManifestPath: manifestPath,
		Device:       opts.device,
		SinkPort:     &opts.sinkPort,
		SinkEndpoint: &opts.sinkEndpoint,
		Logger:       logger,
	})
	if err != nil {
		printError("resolve failed: %v", err)
		return err
	}

	if opts.jsonOut != "" {
		if err := ptio.ExportJSON(result, opts.jsonOut); err != nil {
			return err
		}
		printFile(opts.jsonOut)
	}

	printReport(&result.Report)
	printSuccess("resolved %d node(s) in %s", result.Stats.NodeCount,
		result.Stats.LoadTime+result.Stats.ProbeTime+result.Stats.ResolveTime)
	return nil
}

// printReport renders a resolution report to stdout.
func printReport(rep *pipeline.Report) {
	fmt.Println(StyleTitle.Render("Pipeline " + rep.Device))
	fmt.Println()

	fmt.Println(StyleHighlight.Render("Matches"))
	if len(rep.Matches) == 0 {
		printDetail("none")
	}
	for _, m := range rep.Matches {
		printDetail("%-8s %s", m.Kind, m.Path)
	}
	fmt.Println()

	fmt.Println(StyleHighlight.Render("Controllers"))
	if len(rep.Controllers) == 0 {
		printDetail("none")
	}
	for _, c := range rep.Controllers {
		printDetail("%s mask 0x%08x %s %s", c.Name, c.Mask, iconArrow, c.Port)
	}
	fmt.Println()

	fmt.Println(StyleHighlight.Render("Encoders"))
	if len(rep.Encoders) == 0 {
		printDetail("none")
	}
	for _, e := range rep.Encoders {
		printDetail("%s possible 0x%08x", e.Name, e.PossibleMask)
		if e.Active != nil {
			printDetail("  active endpoint port %d id %d", e.Active.Port, e.Active.ID)
		}
		switch {
		case e.Sink != nil:
			printDetail("  sink %s %q", e.Sink.Kind, e.Sink.Name)
		case e.Deferred:
			printWarning("  sink not yet registered, deferring")
		case e.SinkError != "":
			printDetail("  sink: %s", StyleWarning.Render(e.SinkError))
		}
	}
}
