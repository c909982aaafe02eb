// Package pipeline provides the core load → probe → resolve pipeline
// for pipetree.
//
// This package implements the complete topology resolution flow that
// both the CLI and the HTTP API drive. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: parse the device graph manifest into a tree plus the
//     pipeline configuration (master device, panels, bridges)
//  2. Probe: run the two-pass component probe and bind the resulting
//     match list through the in-process [Registrar]
//  3. Resolve: for every bound encoder, compute the possible
//     controller mask, the active input endpoint, and the downstream
//     sink
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath: "display.toml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, enc := range result.Report.Encoders {
//	    fmt.Println(enc.Name, enc.PossibleMask)
//	}
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// Default sink resolution indices. Output ports conventionally carry
// unit index 1 on devices whose port 0 faces the controller; the
// endpoint wildcard matches the first endpoint of the port.
const (
	DefaultSinkPort     = 1
	DefaultSinkEndpoint = -1
)

// Int returns a pointer to v, for filling optional [Options] fields.
func Int(v int) *int { return &v }

// Options contains all configuration for the resolution pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// ManifestPath locates the device graph manifest on disk. Used by
	// Execute; callers that already hold a parsed tree use Resolve.
	ManifestPath string `json:"manifest_path,omitempty"`

	// Device overrides the manifest's pipeline device path.
	Device string `json:"device,omitempty"`

	// SinkPort and SinkEndpoint select the output port and endpoint
	// used for downstream sink resolution on each encoder. Nil means
	// the default; an explicit 0 is a valid port or endpoint id.
	// A SinkEndpoint of -1 matches the first endpoint.
	SinkPort     *int `json:"sink_port,omitempty"`
	SinkEndpoint *int `json:"sink_endpoint,omitempty"`

	// Logger overrides the runner's logger for this execution.
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.SinkPort == nil {
		o.SinkPort = Int(DefaultSinkPort)
	}
	if o.SinkEndpoint == nil {
		o.SinkEndpoint = Int(DefaultSinkEndpoint)
	}
	if *o.SinkPort < 0 {
		return pterrors.New(pterrors.ErrCodeInvalidInput, "sink port must not be negative")
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the resolved topology.
	Report Report `json:"report"`

	// Stats contains timing and size information.
	Stats Stats `json:"stats"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int           `json:"node_count"`
	LoadTime    time.Duration `json:"load_time"`
	ProbeTime   time.Duration `json:"probe_time"`
	ResolveTime time.Duration `json:"resolve_time"`
}

// Report is the serializable description of a resolved display
// pipeline topology.
type Report struct {
	Device      string             `json:"device"`
	Matches     []MatchReport      `json:"matches"`
	Controllers []ControllerReport `json:"controllers"`
	Encoders    []EncoderReport    `json:"encoders"`
}

// MatchReport is one entry of the submitted match list, in bind order.
type MatchReport struct {
	Path string `json:"path"`
	Kind string `json:"kind"` // "port" or "encoder"
}

// ControllerReport describes one registered controller and its bitmask.
type ControllerReport struct {
	Name string `json:"name"`
	Port string `json:"port"`
	Mask uint32 `json:"mask"`
}

// EndpointReport is a parsed active-endpoint descriptor.
type EndpointReport struct {
	Port int `json:"port"`
	ID   int `json:"id"`
}

// SinkReport describes the resolved downstream sink of an encoder.
type SinkReport struct {
	Kind string `json:"kind"` // "panel" or "bridge"
	Name string `json:"name"`
}

// EncoderReport describes one bound encoder: the controllers that can
// feed it, the active input endpoint once routed, and its downstream
// sink. Deferred is set when sink resolution returned DEFER_PROBE;
// SinkError carries any other sink resolution failure.
type EncoderReport struct {
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	PossibleMask uint32          `json:"possible_mask"`
	Active       *EndpointReport `json:"active,omitempty"`
	Sink         *SinkReport     `json:"sink,omitempty"`
	Deferred     bool            `json:"deferred,omitempty"`
	SinkError    string          `json:"sink_error,omitempty"`
}

// DefaultCompare is the comparison predicate the registrar binds with:
// a port is claimable when its parent device declares a compatible
// string, any other node when it declares one itself.
func DefaultCompare(n *devtree.Node) bool {
	if n.NameIs("port") {
		return n.Parent() != nil && n.Parent().Compatible() != ""
	}
	return n.Compatible() != ""
}
