package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Analysis is a stored AI-written narrative over a scan's reconciled
// findings, kept for auditing and retrieval. It is reporting output, not
// evidence: the pipeline's verdicts are never derived from it.
type Analysis struct {
	ID        AnalysisID `json:"id"`
	TenantID  string     `json:"tenant_id"`
	ScanID    string     `json:"scan_id"`
	Result    string     `json:"result"` // JSON string from the AI provider
	CreatedAt time.Time  `json:"created_at"`
}
