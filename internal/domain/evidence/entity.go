package evidence

import (
	"time"

	"github.com/bryanwahyu/aicomply/internal/domain/controls"
)

// Kind enum
type Kind string

const (
	KindFile        Kind = "file"
	KindCodePattern Kind = "code-pattern"
	KindConfig      Kind = "config"
	KindTestResult  Kind = "test-result"
	KindMetric      Kind = "metric"
	KindLog         Kind = "log"
)

// Status enum
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusExpired Status = "expired"
	StatusMissing Status = "missing"
)

// Evidence is one fact produced for exactly one control by the scanner or by
// one analyzer. Append-only: a re-run supersedes an older item with the same
// (control id, rule, source) key via a newer CollectedAt, it never mutates it.
//
// Rule names the expected-source pattern of the control this item satisfies
// (a file pattern for scanner output, "analyzer:<id>" for analyzer output).
type Evidence struct {
	ID          string             `json:"id"`
	ControlID   controls.ControlID `json:"control_id"`
	Kind        Kind               `json:"kind"`
	Rule        string             `json:"rule"`
	Source      string             `json:"source"`
	CollectedAt time.Time          `json:"collected_at"`
	ContentHash string             `json:"content_hash,omitempty"`
	Status      Status             `json:"status"`
	RawRef      string             `json:"raw_ref,omitempty"`
}
