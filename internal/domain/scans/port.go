package scans

import (
	"context"
	"io"

	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
	"github.com/bryanwahyu/aicomply/internal/domain/findings"
)

// Repository port for the scan-scoped collections: evidence is append-only,
// findings and jobs are upserted by their natural key. Reads after a
// completed append/upsert must observe that write; no cross-scan consistency
// is required.
type Repository interface {
	SaveScan(ctx context.Context, s *Scan) error
	GetScan(ctx context.Context, tenant string, id ScanID) (*Scan, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Scan, error)

	AppendEvidence(ctx context.Context, id ScanID, ev *evidence.Evidence) error
	Evidence(ctx context.Context, id ScanID) ([]*evidence.Evidence, error)
	EvidenceByID(ctx context.Context, id ScanID, evidenceID string) (*evidence.Evidence, error)

	UpsertFinding(ctx context.Context, id ScanID, f *findings.Finding) error
	Findings(ctx context.Context, id ScanID) ([]*findings.Finding, error)

	UpsertJob(ctx context.Context, j *Job) error
	Jobs(ctx context.Context, id ScanID) ([]*Job, error)
}

// ArtifactStore port for bundle bytes and raw analyzer output
type ArtifactStore interface {
	Download(ctx context.Context, key string) (localPath string, err error)
	ReadBytes(ctx context.Context, key string) (io.ReadCloser, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}

// Extractor port turning a downloaded archive into a Bundle.
// Implementations wrap extraction failures in ErrCorruptArtifact.
type Extractor interface {
	Extract(ctx context.Context, name, archivePath string) (*Bundle, error)
}
