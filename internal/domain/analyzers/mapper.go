package analyzers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
)

// MapResult converts one buffered analyzer result into evidence items, one per
// declared capability whose section is present and well-formed. Malformed or
// absent sections are skipped silently: an analyzer may partially satisfy its
// declaration per run, and one misbehaving tool must not corrupt the scan.
// No I/O happens here.
func MapResult(res *Result, caps []Capability, collectedAt time.Time) []*evidence.Evidence {
	var out []*evidence.Evidence
	for _, c := range caps {
		section, ok := res.Sections[string(c.ControlID)]
		if !ok || !wellFormed(section) {
			continue
		}
		sum := sha256.Sum256(section)
		out = append(out, &evidence.Evidence{
			ID:          uuid.New().String(),
			ControlID:   c.ControlID,
			Kind:        c.Kind,
			Rule:        Locator(res.Analyzer),
			Source:      Locator(res.Analyzer),
			CollectedAt: collectedAt,
			ContentHash: hex.EncodeToString(sum[:]),
			Status:      evidence.StatusValid,
			RawRef:      res.RawRef,
		})
	}
	return out
}

// Locator is the synthetic source locator for analyzer-produced evidence,
// matching the "analyzer:<id>" expected-source pattern in control definitions.
func Locator(id ID) string {
	return fmt.Sprintf("analyzer:%s", id)
}

func wellFormed(section json.RawMessage) bool {
	trimmed := bytes.TrimSpace(section)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	return json.Valid(trimmed)
}
