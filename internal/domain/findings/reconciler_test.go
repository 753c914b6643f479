package findings

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ctrl(sources ...string) controls.Control {
	return controls.Control{
		ID:              "CTRL-009-001",
		Article:         "Article 9",
		Title:           "Risk Identification Procedure",
		AutomationLevel: controls.SemiAutomated,
		EvidenceSources: sources,
		Severity:        controls.SeverityHigh,
	}
}

func valid(rule, id string) *evidence.Evidence {
	return &evidence.Evidence{
		ID: id, ControlID: "CTRL-009-001", Rule: rule, Source: rule,
		CollectedAt: now, Status: evidence.StatusValid,
	}
}

func TestReconcileThresholds(t *testing.T) {
	tests := []struct {
		name       string
		sources    []string
		satisfied  []string
		wantStatus Status
		wantConf   float64
	}{
		{
			name:       "all satisfied",
			sources:    []string{"a", "b"},
			satisfied:  []string{"a", "b"},
			wantStatus: StatusCompliant,
			wantConf:   1.0,
		},
		{
			name:       "four of five",
			sources:    []string{"a", "b", "c", "d", "e"},
			satisfied:  []string{"a", "b", "c", "d"},
			wantStatus: StatusCompliant,
			wantConf:   0.8,
		},
		{
			name:       "half satisfied",
			sources:    []string{"a", "b"},
			satisfied:  []string{"a"},
			wantStatus: StatusPartial,
			wantConf:   0.5,
		},
		{
			name:       "two of five",
			sources:    []string{"a", "b", "c", "d", "e"},
			satisfied:  []string{"a", "b"},
			wantStatus: StatusPartial,
			wantConf:   0.4,
		},
		{
			name:       "one of five",
			sources:    []string{"a", "b", "c", "d", "e"},
			satisfied:  []string{"a"},
			wantStatus: StatusNonCompliant,
			wantConf:   0.2,
		},
		{
			name:       "nothing satisfied",
			sources:    []string{"a", "b"},
			satisfied:  nil,
			wantStatus: StatusNonCompliant,
			wantConf:   0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var evs []*evidence.Evidence
			for i, rule := range tt.satisfied {
				evs = append(evs, valid(rule, string(rune('1'+i))))
			}
			f := Reconcile(ctrl(tt.sources...), evs)
			if f.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", f.Status, tt.wantStatus)
			}
			if f.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", f.Confidence, tt.wantConf)
			}
		})
	}
}

func TestReconcileInvalidEvidenceDoesNotCount(t *testing.T) {
	ev := valid("a", "1")
	ev.Status = evidence.StatusInvalid

	f := Reconcile(ctrl("a"), []*evidence.Evidence{ev})
	if f.Status != StatusNonCompliant {
		t.Errorf("Status = %s, want non_compliant", f.Status)
	}
	// invalid item is still linked for audit
	if len(f.EvidenceIDs) != 1 {
		t.Errorf("EvidenceIDs = %v, want the invalid item linked", f.EvidenceIDs)
	}
}

func TestReconcileManualControl(t *testing.T) {
	manual := ctrl("docs/oversight*")
	manual.AutomationLevel = controls.Manual

	f := Reconcile(manual, nil)
	if f.Status != StatusNotApplicable {
		t.Fatalf("Status = %s, want not_applicable", f.Status)
	}
	if f.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0", f.Confidence)
	}
	if !strings.Contains(f.Recommendation, "Manual review required") {
		t.Errorf("Recommendation = %q", f.Recommendation)
	}

	// with evidence, a manual control reconciles like any other
	f = Reconcile(manual, []*evidence.Evidence{valid("docs/oversight*", "1")})
	if f.Status != StatusCompliant {
		t.Errorf("Status = %s, want compliant", f.Status)
	}
}

func TestReconcileGapsInDeclarationOrder(t *testing.T) {
	c := ctrl("z-first", "a-second", "m-third")
	f := Reconcile(c, []*evidence.Evidence{valid("a-second", "1")})

	want := []string{"z-first", "m-third"}
	if !reflect.DeepEqual(f.Gaps, want) {
		t.Errorf("Gaps = %v, want %v", f.Gaps, want)
	}
	if !strings.Contains(f.Recommendation, "z-first") {
		t.Errorf("Recommendation = %q, want gap list", f.Recommendation)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	c := ctrl("a", "b", "c")
	evs := []*evidence.Evidence{valid("a", "1"), valid("b", "2")}

	first := Reconcile(c, evs)
	second := Reconcile(c, evs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reconcile not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestReconcileNoDeclaredSources(t *testing.T) {
	f := Reconcile(ctrl(), nil)
	if f.Status != StatusNonCompliant {
		t.Errorf("Status = %s, want non_compliant", f.Status)
	}
	if !strings.Contains(f.Recommendation, "No evidence sources declared") {
		t.Errorf("Recommendation = %q", f.Recommendation)
	}
}
