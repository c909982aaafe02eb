package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pipetree/pipetree/pkg/pipeline"
)

// ReadJSON decodes a resolution result from r.
//
// The input must be a JSON object in the format [WriteJSON] produces.
// A report without a device path is rejected since every resolution
// run has one. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*pipeline.Result, error) {
	var res pipeline.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if res.Report.Device == "" {
		return nil, fmt.Errorf("result has no device path")
	}
	return &res, nil
}

// ImportJSON reads a resolution result from the JSON file at path.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
