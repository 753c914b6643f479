package scanerrors

import "time"

// AnalyzerError is a persisted record of one failed analyzer attempt. The
// authoritative failure signal stays in the ScanJob state; these rows are the
// audit trail behind it.
type AnalyzerError struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ScanID      string    `json:"scan_id"`
	Analyzer    string    `json:"analyzer,omitempty"`
	Class       string    `json:"class,omitempty"` // timeout | tool_crashed | unsupported_artifact
	Attempt     int       `json:"attempt"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
