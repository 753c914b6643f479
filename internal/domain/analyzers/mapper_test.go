package analyzers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
)

var collectedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMapResult(t *testing.T) {
	caps := CapabilityTable[Deps]
	res := &Result{
		Analyzer:     Deps,
		ArtifactHash: "abc123",
		Sections: map[string]json.RawMessage{
			"CTRL-015-004": json.RawMessage(`{"vulnerable_packages":0}`),
		},
		RawRef: "evidence/abc123/deps.json",
	}

	out := MapResult(res, caps, collectedAt)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	ev := out[0]
	if ev.ControlID != "CTRL-015-004" {
		t.Errorf("ControlID = %s", ev.ControlID)
	}
	if ev.Rule != "analyzer:deps" || ev.Source != "analyzer:deps" {
		t.Errorf("Rule/Source = %s/%s, want analyzer:deps", ev.Rule, ev.Source)
	}
	if ev.Kind != evidence.KindMetric {
		t.Errorf("Kind = %s, want metric", ev.Kind)
	}
	if ev.Status != evidence.StatusValid {
		t.Errorf("Status = %s, want valid", ev.Status)
	}
	if ev.ContentHash == "" || ev.RawRef != res.RawRef {
		t.Errorf("ContentHash/RawRef not propagated: %q %q", ev.ContentHash, ev.RawRef)
	}
}

func TestMapResultSkipsMalformedSections(t *testing.T) {
	tests := []struct {
		name    string
		section json.RawMessage
	}{
		{"missing", nil},
		{"empty", json.RawMessage(``)},
		{"whitespace", json.RawMessage(`   `)},
		{"null literal", json.RawMessage(`null`)},
		{"broken json", json.RawMessage(`{"oops":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Result{Analyzer: Bandit, Sections: map[string]json.RawMessage{}}
			if tt.section != nil {
				res.Sections["CTRL-015-005"] = tt.section
			}
			if out := MapResult(res, CapabilityTable[Bandit], collectedAt); len(out) != 0 {
				t.Errorf("len = %d, want 0", len(out))
			}
		})
	}
}

func TestMapResultPartialCapabilities(t *testing.T) {
	// one declared capability satisfied, an undeclared section ignored
	caps := []Capability{
		{ControlID: "CTRL-011-006", Kind: evidence.KindMetric},
		{ControlID: "CTRL-011-007", Kind: evidence.KindMetric},
	}
	res := &Result{
		Analyzer: ONNXMeta,
		Sections: map[string]json.RawMessage{
			"CTRL-011-006": json.RawMessage(`{"inputs":1}`),
			"CTRL-099-001": json.RawMessage(`{"extra":true}`),
		},
	}
	out := MapResult(res, caps, collectedAt)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].ControlID != "CTRL-011-006" {
		t.Errorf("ControlID = %s", out[0].ControlID)
	}
}

func TestErrorClassification(t *testing.T) {
	timeout := NewTimeout(Deps, errors.New("deadline"))
	crashed := NewToolCrashed(Bandit, errors.New("exit 2"))
	unsupported := NewUnsupportedArtifact(ONNXMeta, errors.New("dataset given"))
	plain := errors.New("network blip")

	if !Retriable(timeout) || !Retriable(crashed) || !Retriable(plain) {
		t.Errorf("timeout/crash/unknown must be retriable")
	}
	if Retriable(unsupported) {
		t.Errorf("unsupported artifact must not be retriable")
	}

	if Classify(timeout) != ClassTimeout {
		t.Errorf("Classify(timeout) = %s", Classify(timeout))
	}
	if Classify(unsupported) != ClassUnsupportedArtifact {
		t.Errorf("Classify(unsupported) = %s", Classify(unsupported))
	}
	if Classify(plain) != ClassToolCrashed {
		t.Errorf("Classify(unknown) = %s, want tool_crashed", Classify(plain))
	}
}

func TestKnown(t *testing.T) {
	for _, id := range []string{"deps", "bandit", "onnx_meta", "dataset_sanity"} {
		if !Known(id) {
			t.Errorf("Known(%s) = false", id)
		}
	}
	if Known("fuzzer") {
		t.Errorf("Known(fuzzer) = true")
	}
}
