// Package io provides JSON import and export for resolution results.
//
// # Overview
//
// This package serializes pipeline results to and from a stable JSON
// format. The format is designed for:
//
//   - Integration with external tools that consume topology data
//   - Archiving resolution runs for later comparison
//   - Round-trip preservation: export a result and re-import it identically
//
// # JSON Format
//
// The format mirrors [pipeline.Result]: a "report" object holding the
// resolved topology (device, matches, controllers, encoders) and a
// "stats" object with node counts and stage timings.
//
//	{
//	  "report": {
//	    "device": "/soc/display-subsystem",
//	    "matches": [{"path": "/soc/dc0/port", "kind": "port"}],
//	    "controllers": [{"name": "dc0", "port": "/soc/dc0/port", "mask": 1}],
//	    "encoders": [{"name": "hdmi", "path": "/soc/hdmi", "possible_mask": 1}]
//	  },
//	  "stats": {"node_count": 20}
//	}
//
// # Import
//
// Use [ImportJSON] to read a result from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	res, err := io.ImportJSON("run.json")
//
// # Export
//
// Use [ExportJSON] to write a result to a file, or [WriteJSON] to write
// to any io.Writer:
//
//	err := io.ExportJSON(res, "run.json")
package io
