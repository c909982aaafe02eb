package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pipetree/pipetree/pkg/pipeline"
)

// WriteJSON encodes a resolution result as indented JSON and writes it
// to w. The output can be re-imported with [ReadJSON].
func WriteJSON(res *pipeline.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a resolution result to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(res, f)
}
