package findings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
)

// Status thresholds over the satisfied-sources ratio. Fixed policy, not
// tunable per call.
const (
	compliantThreshold = 0.8
	partialThreshold   = 0.4
)

// Reconcile combines a control's current evidence into one Finding.
//
// The ratio counts the control's expected evidence sources that have at least
// one valid evidence item whose Rule matches that source pattern, over the
// total declared sources. Manual controls with no evidence at all come out
// not_applicable with confidence 0 rather than auto-failed.
func Reconcile(ctrl controls.Control, evs []*evidence.Evidence) *Finding {
	satisfied := make(map[string]bool, len(ctrl.EvidenceSources))
	var ids []string
	for _, ev := range evs {
		ids = append(ids, ev.ID)
		if ev.Status != evidence.StatusValid {
			continue
		}
		satisfied[ev.Rule] = true
	}
	sort.Strings(ids)

	var gaps []string
	count := 0
	for _, src := range ctrl.EvidenceSources {
		if satisfied[src] {
			count++
		} else {
			gaps = append(gaps, src)
		}
	}

	ratio := 0.0
	if total := len(ctrl.EvidenceSources); total > 0 {
		ratio = float64(count) / float64(total)
	}

	f := &Finding{
		ControlID:   ctrl.ID,
		Article:     ctrl.Article,
		Confidence:  ratio,
		EvidenceIDs: ids,
		Gaps:        gaps,
		Severity:    ctrl.Severity,
	}

	switch {
	case ctrl.AutomationLevel == controls.Manual && len(evs) == 0:
		f.Status = StatusNotApplicable
		f.Confidence = 0.0
	case ratio >= compliantThreshold:
		f.Status = StatusCompliant
	case ratio >= partialThreshold:
		f.Status = StatusPartial
	default:
		f.Status = StatusNonCompliant
	}

	f.Recommendation = recommendation(ctrl, f.Status, gaps)
	return f
}

func recommendation(ctrl controls.Control, st Status, gaps []string) string {
	switch st {
	case StatusCompliant:
		return "Control satisfied"
	case StatusNotApplicable:
		return fmt.Sprintf("Manual review required for %s", ctrl.Title)
	default:
		if len(gaps) == 0 {
			return fmt.Sprintf("No evidence sources declared for %s", ctrl.Title)
		}
		n := len(gaps)
		if n > 3 {
			n = 3
		}
		return fmt.Sprintf("Provide evidence for: %s", strings.Join(gaps[:n], ", "))
	}
}
