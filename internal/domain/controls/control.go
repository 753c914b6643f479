package controls

// ControlID identifier type
type ControlID string

// AutomationLevel enum
type AutomationLevel string

const (
	Automated     AutomationLevel = "automated"
	SemiAutomated AutomationLevel = "semi-automated"
	Manual        AutomationLevel = "manual"
)

// Severity enum, inherited by findings
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Category enum for what kind of artifact satisfies the control
type Category string

const (
	CategoryDocumentation Category = "documentation"
	CategoryCode          Category = "code"
	CategoryConfig        Category = "config"
	CategoryTest          Category = "test"
	CategoryData          Category = "data"
	CategoryModel         Category = "model"
	CategoryCI            Category = "ci"
	CategoryFile          Category = "file"
)

// Control is one checkable requirement tied to an article. Immutable after
// registry load.
//
// EvidenceSources holds the expected source patterns, in declaration order:
// a path glob ("docs/risk*"), a directory prefix ("tests/"), a content rule
// ("contains:import logging"), or an analyzer capability ("analyzer:deps").
type Control struct {
	ID              ControlID       `json:"id"`
	Article         string          `json:"article"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Category        Category        `json:"category"`
	AutomationLevel AutomationLevel `json:"automation_level"`
	EvidenceSources []string        `json:"evidence_sources"`
	Severity        Severity        `json:"severity"`
	References      []string        `json:"references,omitempty"`
}
