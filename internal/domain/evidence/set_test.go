package evidence

import (
	"testing"
	"time"

	"github.com/bryanwahyu/aicomply/internal/domain/controls"
)

func item(control, rule, source string, at time.Time, id string) *Evidence {
	return &Evidence{
		ID:          id,
		ControlID:   controls.ControlID(control),
		Kind:        KindFile,
		Rule:        rule,
		Source:      source,
		CollectedAt: at,
		Status:      StatusValid,
	}
}

func TestSetSupersede(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := NewSet()
	if !s.Add(item("c", "README.md", "README.md", base, "old")) {
		t.Fatalf("first add rejected")
	}
	if !s.Add(item("c", "README.md", "README.md", base.Add(time.Minute), "new")) {
		t.Fatalf("newer item rejected")
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].ID != "new" {
		t.Errorf("current = %s, want new", items[0].ID)
	}
}

func TestSetStaleDiscarded(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := NewSet()
	s.Add(item("c", "README.md", "README.md", base, "current"))
	if s.Add(item("c", "README.md", "README.md", base.Add(-time.Hour), "stale")) {
		t.Fatalf("stale item accepted")
	}
	if got := s.Items()[0].ID; got != "current" {
		t.Errorf("current = %s, want current", got)
	}
}

func TestSetTieKeepsExisting(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := NewSet()
	s.Add(item("c", "README.md", "README.md", base, "first"))
	if s.Add(item("c", "README.md", "README.md", base, "second")) {
		t.Fatalf("equal-time item superseded existing")
	}
	if got := s.Items()[0].ID; got != "first" {
		t.Errorf("current = %s, want first", got)
	}
}

func TestSetDistinctKeysCoexist(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := NewSet()
	s.Add(item("c", "docs/risk*", "docs/risk_plan.md", base, "a"))
	s.Add(item("c", "docs/risk*", "docs/risk_log.md", base, "b"))
	s.Add(item("c", "RISK_MANAGEMENT*", "RISK_MANAGEMENT.md", base, "c"))

	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestCollapseDeterministicOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	log := []*Evidence{
		item("c", "b-rule", "x", base, "1"),
		item("c", "a-rule", "z", base, "2"),
		item("c", "a-rule", "y", base, "3"),
	}

	items := Collapse(log).Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	want := []string{"3", "2", "1"} // sorted by (rule, source)
	for i, w := range want {
		if items[i].ID != w {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, w)
		}
	}
}
