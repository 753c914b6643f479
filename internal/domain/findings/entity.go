package findings

import (
	"github.com/bryanwahyu/aicomply/internal/domain/controls"
)

// Status enum
type Status string

const (
	StatusCompliant     Status = "compliant"
	StatusPartial       Status = "partial"
	StatusNonCompliant  Status = "non_compliant"
	StatusNotApplicable Status = "not_applicable"
)

// Finding is the reconciled verdict for one control within one scan. It is a
// pure function of the control definition and the current evidence set, never
// hand-edited; reconciling the same snapshot twice yields an identical value.
type Finding struct {
	ControlID      controls.ControlID `json:"control_id"`
	Article        string             `json:"article"`
	Status         Status             `json:"status"`
	Confidence     float64            `json:"confidence"`
	EvidenceIDs    []string           `json:"evidence_ids,omitempty"`
	Gaps           []string           `json:"gaps,omitempty"`
	Recommendation string             `json:"recommendation"`
	Severity       controls.Severity  `json:"severity"`
}
