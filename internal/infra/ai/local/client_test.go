package local

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func analyze(t *testing.T, payload string) output {
	t.Helper()
	raw, err := NewClient().Analyze(context.Background(), payload)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var out output
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, raw)
	}
	return out
}

func TestAnalyzeCountsAndGaps(t *testing.T) {
	out := analyze(t, `{
		"coverage": {"percentage": 62.50},
		"findings": [
			{"control_id": "CTRL-009-001", "article": "Article 9", "status": "compliant", "severity": "high"},
			{"control_id": "CTRL-010-002", "article": "Article 10", "status": "partial", "severity": "medium", "recommendation": "Provide missing evidence"},
			{"control_id": "CTRL-015-005", "article": "Article 15", "status": "non_compliant", "severity": "critical", "recommendation": "Run the code scanner"},
			{"control_id": "CTRL-014-001", "article": "Article 14", "status": "not_applicable", "severity": "info"}
		]
	}`)

	if out.CoveragePct != 62.50 {
		t.Errorf("CoveragePct = %v", out.CoveragePct)
	}
	counts := out.StatusCounts
	if counts["compliant"] != 1 || counts["partial"] != 1 || counts["non_compliant"] != 1 || counts["not_applicable"] != 1 {
		t.Errorf("StatusCounts = %v", counts)
	}

	if len(out.Gaps) != 2 {
		t.Fatalf("Gaps = %d, want 2", len(out.Gaps))
	}
	// critical sorts ahead of medium
	if out.Gaps[0].ControlID != "CTRL-015-005" || out.Gaps[1].ControlID != "CTRL-010-002" {
		t.Errorf("gap order = %s, %s", out.Gaps[0].ControlID, out.Gaps[1].ControlID)
	}
	if out.Gaps[0].Action != "Run the code scanner" {
		t.Errorf("Action = %q", out.Gaps[0].Action)
	}
	if !strings.Contains(out.Summary, "no satisfying evidence") {
		t.Errorf("Summary = %q, want non-compliant narrative", out.Summary)
	}
}

func TestAnalyzePartialOnly(t *testing.T) {
	out := analyze(t, `{
		"coverage": {"percentage": 87.50},
		"findings": [
			{"control_id": "CTRL-009-001", "article": "Article 9", "status": "compliant", "severity": "high"},
			{"control_id": "CTRL-010-002", "article": "Article 10", "status": "partial", "severity": "low"}
		]
	}`)

	if !strings.Contains(out.Summary, "partially satisfied") {
		t.Errorf("Summary = %q, want partial narrative", out.Summary)
	}
	if len(out.Gaps) != 1 {
		t.Errorf("Gaps = %d, want 1", len(out.Gaps))
	}
}

func TestAnalyzeAllCompliant(t *testing.T) {
	out := analyze(t, `{
		"coverage": {"percentage": 100.00},
		"findings": [
			{"control_id": "CTRL-009-001", "article": "Article 9", "status": "compliant", "severity": "high"}
		]
	}`)

	if len(out.Gaps) != 0 {
		t.Errorf("Gaps = %d, want 0", len(out.Gaps))
	}
	if !strings.Contains(out.Summary, "Manual controls") {
		t.Errorf("Summary = %q, want clean narrative", out.Summary)
	}
}

func TestAnalyzeGapsCapped(t *testing.T) {
	var fs []string
	for i := 0; i < 15; i++ {
		fs = append(fs, `{"control_id": "CTRL-X", "article": "Article 9", "status": "non_compliant", "severity": "high"}`)
	}
	out := analyze(t, `{"coverage": {"percentage": 0}, "findings": [`+strings.Join(fs, ",")+`]}`)

	if len(out.Gaps) != 10 {
		t.Errorf("Gaps = %d, want capped at 10", len(out.Gaps))
	}
}

func TestAnalyzeUnparseablePayload(t *testing.T) {
	out := analyze(t, `{{not json`)

	if !strings.Contains(out.Summary, "could not be parsed") {
		t.Errorf("Summary = %q", out.Summary)
	}
	if out.StatusCounts == nil || out.Gaps == nil {
		t.Errorf("schema fields missing: %+v", out)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	payload := `{
		"coverage": {"percentage": 50},
		"findings": [
			{"control_id": "A", "article": "Article 9", "status": "non_compliant", "severity": "high"},
			{"control_id": "B", "article": "Article 9", "status": "non_compliant", "severity": "high"}
		]
	}`
	a, _ := NewClient().Analyze(context.Background(), payload)
	b, _ := NewClient().Analyze(context.Background(), payload)
	if a != b {
		t.Errorf("output not deterministic:\n%s\n%s", a, b)
	}
}
