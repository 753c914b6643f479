package scans

import (
	"time"

	"github.com/bryanwahyu/aicomply/internal/domain/artifacts"
)

// ScanID identifier type
type ScanID string

// Scan is one evaluation run over one artifact bundle. Evidence, findings and
// jobs are scoped to it; the bundle is exclusively owned by this scan.
type Scan struct {
	ID          ScanID        `json:"id"`
	TenantID    string        `json:"tenant_id"`
	Bundle      artifacts.Ref `json:"bundle"`
	StartedAt   time.Time     `json:"started_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// Cancelled reports whether cancellation has been requested for the scan
func (s *Scan) Cancelled() bool { return s.CancelledAt != nil }
