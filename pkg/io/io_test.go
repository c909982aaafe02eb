package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pipetree/pipetree/pkg/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Report: pipeline.Report{
			Device: "/soc/display-subsystem",
			Matches: []pipeline.MatchReport{
				{Path: "/soc/dc0/port", Kind: "port"},
				{Path: "/soc/hdmi", Kind: "encoder"},
			},
			Controllers: []pipeline.ControllerReport{
				{Name: "dc0", Port: "/soc/dc0/port", Mask: 0x1},
			},
			Encoders: []pipeline.EncoderReport{
				{Name: "hdmi", Path: "/soc/hdmi", PossibleMask: 0x1,
					Active: &pipeline.EndpointReport{Port: 0, ID: 0},
					Sink:   &pipeline.SinkReport{Kind: "panel", Name: "lvds"}},
			},
		},
		Stats: pipeline.Stats{NodeCount: 20},
	}
}

func TestRoundTrip(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	if err := WriteJSON(res, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if !reflect.DeepEqual(got, res) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, res)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"report":`},
		{"missing device", `{"report": {}, "stats": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadJSON() error = nil")
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	res := sampleResult()
	path := filepath.Join(t.TempDir(), "run.json")

	if err := ExportJSON(res, path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if got.Report.Device != res.Report.Device {
		t.Errorf("device = %s, want %s", got.Report.Device, res.Report.Device)
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ImportJSON() on missing file should fail")
	}
}
