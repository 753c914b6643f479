package analyzers

import (
	"context"
	"encoding/json"

	"github.com/bryanwahyu/aicomply/internal/domain/artifacts"
	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
)

// ID enum of known analyzer identifiers
type ID string

const (
	Deps          ID = "deps"
	Bandit        ID = "bandit"
	ONNXMeta      ID = "onnx_meta"
	DatasetSanity ID = "dataset_sanity"
)

// Capability declares one (control, evidence kind) pair an analyzer can
// produce. Declarations are static per analyzer identifier, not computed at
// runtime.
type Capability struct {
	ControlID controls.ControlID
	Kind      evidence.Kind
}

// Result is the buffered output of one successful analyzer run. Sections is
// keyed by control id; an analyzer may satisfy only part of its declared
// capabilities in a given run.
type Result struct {
	Analyzer     ID
	ArtifactHash string
	Sections     map[string]json.RawMessage
	RawRef       string
}

// Analyzer is the uniform invocation contract wrapping one external tool.
// Invoke must be idempotent for a given artifact content hash: retries and
// re-runs may produce equivalent results without duplicating evidence beyond
// the normal supersede rule.
type Analyzer interface {
	ID() ID
	Capabilities() []Capability
	Invoke(ctx context.Context, ref artifacts.Ref) (*Result, error)
}

// CapabilityTable maps each known analyzer identifier to its static
// declaration. Mirrors the rule-to-article mapping of the analysis tools.
var CapabilityTable = map[ID][]Capability{
	Deps: {
		{ControlID: "CTRL-015-004", Kind: evidence.KindMetric},
	},
	Bandit: {
		{ControlID: "CTRL-015-005", Kind: evidence.KindCodePattern},
	},
	ONNXMeta: {
		{ControlID: "CTRL-011-006", Kind: evidence.KindMetric},
	},
	DatasetSanity: {
		{ControlID: "CTRL-010-002", Kind: evidence.KindMetric},
	},
}

// Known reports whether id names a known analyzer
func Known(id string) bool {
	_, ok := CapabilityTable[ID(id)]
	return ok
}
