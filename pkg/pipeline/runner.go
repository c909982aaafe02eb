package pipeline

import (
	"context"
	"math/bits"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
	"github.com/pipetree/pipetree/pkg/observability"
	"github.com/pipetree/pipetree/pkg/topology"
)

// Runner encapsulates pipeline execution. It is stateless apart from
// the logger: every execution loads (or receives) its own tree and
// builds fresh registries, so multiple goroutines can safely share one
// Runner. In particular controller bitmask indices are recomputed from
// scratch on each run and never survive across executions.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → probe → resolve pipeline against
// the manifest named in opts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	loadStart := time.Now()
	observability.Resolution().OnLoadStart(ctx, opts.ManifestPath)
	tree, pl, err := devtree.Load(opts.ManifestPath)
	loadTime := time.Since(loadStart)
	if err != nil {
		observability.Resolution().OnLoadComplete(ctx, opts.ManifestPath, 0, loadTime, err)
		return nil, err
	}
	observability.Resolution().OnLoadComplete(ctx, opts.ManifestPath, tree.Len(), loadTime, nil)
	logger.Info("loaded device graph", "nodes", tree.Len(), "duration", loadTime)

	result, err := r.Resolve(ctx, tree, pl, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Resolve runs the probe and resolve stages against an already loaded
// tree. The pipeline configuration supplies the master device and the
// sink registries' contents.
func (r *Runner) Resolve(ctx context.Context, tree *devtree.Tree, pl *devtree.Pipeline, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	devicePath := opts.Device
	if devicePath == "" && pl != nil {
		devicePath = pl.Device
	}
	if devicePath == "" {
		return nil, pterrors.New(pterrors.ErrCodeInvalidInput, "no pipeline device given")
	}

	dev := tree.Lookup(devicePath)
	if dev == nil {
		return nil, pterrors.New(pterrors.ErrCodeDeviceNotFound, "device %s not in graph", devicePath)
	}
	defer dev.Release()

	res := topology.NewResolver(logger)
	seedSinks(res, tree, pl)

	// Stage 2: probe and bind.
	probeStart := time.Now()
	observability.Resolution().OnProbeStart(ctx, devicePath)
	reg := NewRegistrar(res.Controllers, logger)
	if err := res.ComponentProbe(dev, DefaultCompare, reg); err != nil {
		observability.Resolution().OnProbeComplete(ctx, devicePath, 0, time.Since(probeStart), err)
		return nil, err
	}
	probeTime := time.Since(probeStart)
	observability.Resolution().OnProbeComplete(ctx, devicePath, len(reg.Matches()), probeTime, nil)
	logger.Info("probed components",
		"matches", len(reg.Matches()),
		"controllers", res.Controllers.Len(),
		"encoders", len(reg.Encoders()),
		"duration", probeTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: per-encoder resolution.
	resolveStart := time.Now()
	report := Report{
		Device:  devicePath,
		Matches: reg.Matches(),
	}
	for _, c := range res.Controllers.All() {
		report.Controllers = append(report.Controllers, ControllerReport{
			Name: c.Name,
			Port: c.Port.Path(),
			Mask: res.Controllers.PortMask(c.Port),
		})
	}
	for _, n := range reg.Encoders() {
		report.Encoders = append(report.Encoders, r.resolveEncoder(res, tree, n, opts))
	}
	resolveTime := time.Since(resolveStart)
	deferred := 0
	for _, e := range report.Encoders {
		if e.Deferred {
			deferred++
		}
	}
	observability.Resolution().OnResolveComplete(ctx, devicePath, len(report.Encoders), deferred, resolveTime)
	logger.Info("resolved topology", "encoders", len(report.Encoders), "duration", resolveTime)

	return &Result{
		Report: report,
		Stats: Stats{
			NodeCount:   tree.Len(),
			ProbeTime:   probeTime,
			ResolveTime: resolveTime,
		},
	}, nil
}

// resolveEncoder computes one encoder's possible controller mask,
// routes it to the first possible controller, and resolves its
// downstream sink.
func (r *Runner) resolveEncoder(res *topology.Resolver, tree *devtree.Tree, n *devtree.Node, opts Options) EncoderReport {
	rep := EncoderReport{Name: n.BaseName(), Path: n.Path()}

	ref := tree.Lookup(n.Path())
	defer ref.Release()

	rep.PossibleMask = res.PossibleControllers(ref)

	if rep.PossibleMask != 0 {
		idx := bits.TrailingZeros32(rep.PossibleMask)
		enc := &topology.Encoder{Name: rep.Name, Controller: res.Controllers.All()[idx]}
		if info, err := res.ActiveEndpoint(ref, enc); err == nil {
			rep.Active = &EndpointReport{Port: info.Port, ID: info.ID}
		}
	}

	sink, err := res.FindSink(ref, *opts.SinkPort, *opts.SinkEndpoint, topology.AcceptPanel|topology.AcceptBridge)
	switch {
	case err == nil:
		s := &SinkReport{Kind: sink.Kind.String()}
		switch sink.Kind {
		case topology.SinkPanel:
			s.Name = sink.Panel.Name
		case topology.SinkBridge:
			s.Name = sink.Bridge.Name
		}
		rep.Sink = s
	case pterrors.IsDeferProbe(err):
		rep.Deferred = true
	default:
		rep.SinkError = pterrors.UserMessage(err)
	}

	return rep
}

// seedSinks fills the resolver's panel and bridge registries from the
// manifest's pipeline section.
func seedSinks(res *topology.Resolver, tree *devtree.Tree, pl *devtree.Pipeline) {
	if pl == nil {
		return
	}
	for _, p := range pl.Panels {
		if ref := tree.Lookup(p.Path); ref != nil {
			res.Panels.Add(ref.Node(), &topology.Panel{Name: p.Name})
			ref.Release()
		}
	}
	for _, b := range pl.Bridges {
		if ref := tree.Lookup(b.Path); ref != nil {
			res.Bridges.Add(ref.Node(), &topology.Bridge{Name: b.Name})
			ref.Release()
		}
	}
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
