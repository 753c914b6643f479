package evidence

import (
	"sort"

	"github.com/bryanwahyu/aicomply/internal/domain/controls"
)

type key struct {
	control controls.ControlID
	rule    string
	source  string
}

// Set collapses an append-only evidence log into the current view: for each
// (control, rule, source) key only the newest item by CollectedAt is visible.
// Ties keep the item added first, so re-running an idempotent analyzer does
// not flap between equivalent items.
type Set struct {
	current map[key]*Evidence
}

func NewSet() *Set {
	return &Set{current: make(map[key]*Evidence)}
}

// Collapse builds a set from a stored evidence log
func Collapse(items []*Evidence) *Set {
	s := NewSet()
	for _, ev := range items {
		s.Add(ev)
	}
	return s
}

// Add records an item, superseding an older one under the same key.
// Returns false when the item was discarded as stale.
func (s *Set) Add(ev *Evidence) bool {
	k := key{control: ev.ControlID, rule: ev.Rule, source: ev.Source}
	if prev, ok := s.current[k]; ok && !ev.CollectedAt.After(prev.CollectedAt) {
		return false
	}
	s.current[k] = ev
	return true
}

// ByControl returns the current items for one control, ordered by (rule,
// source) so reconciliation input is deterministic.
func (s *Set) ByControl(id controls.ControlID) []*Evidence {
	var out []*Evidence
	for k, ev := range s.current {
		if k.control == id {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rule != out[j].Rule {
			return out[i].Rule < out[j].Rule
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Items returns every current item in deterministic order
func (s *Set) Items() []*Evidence {
	out := make([]*Evidence, 0, len(s.current))
	for _, ev := range s.current {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ControlID != out[j].ControlID {
			return out[i].ControlID < out[j].ControlID
		}
		if out[i].Rule != out[j].Rule {
			return out[i].Rule < out[j].Rule
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func (s *Set) Len() int { return len(s.current) }
