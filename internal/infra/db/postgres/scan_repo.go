package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bryanwahyu/aicomply/internal/domain/artifacts"
	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
	"github.com/bryanwahyu/aicomply/internal/domain/findings"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

// ScanRepository is the postgres twin of the mysql repository; same table
// layout, ON CONFLICT upserts instead of ON DUPLICATE KEY.
type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) SaveScan(ctx context.Context, s *domain.Scan) error {
	const q = `
INSERT INTO compliance_scans
 (id, tenant_id, bundle_id, bundle_type, bundle_key, bundle_sha256, bundle_size,
  started_at, cancelled_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
 cancelled_at = EXCLUDED.cancelled_at;`

	tenant := stringOrDash(s.TenantID)
	_, err := r.db.ExecContext(ctx, q,
		s.ID, tenant,
		s.Bundle.ID, s.Bundle.Type, s.Bundle.Key, s.Bundle.SHA256, s.Bundle.Size,
		s.StartedAt, nullableTime(s.CancelledAt),
	)
	return err
}

func (r *ScanRepository) GetScan(ctx context.Context, tenant string, id domain.ScanID) (*domain.Scan, error) {
	const q = `
SELECT id, tenant_id, bundle_id, bundle_type, bundle_key, bundle_sha256, bundle_size,
       started_at, cancelled_at
FROM compliance_scans
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	s, err := scanRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return s, err
}

func (r *ScanRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, bundle_id, bundle_type, bundle_key, bundle_sha256, bundle_size,
       started_at, cancelled_at
FROM compliance_scans
WHERE tenant_id=$1 ORDER BY started_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanRow(scan func(...any) error) (*domain.Scan, error) {
	var s domain.Scan
	var bundleType string
	var cancelled sql.NullTime
	if err := scan(
		&s.ID, &s.TenantID, &s.Bundle.ID, &bundleType, &s.Bundle.Key,
		&s.Bundle.SHA256, &s.Bundle.Size, &s.StartedAt, &cancelled,
	); err != nil {
		return nil, err
	}
	s.Bundle.Type = artifacts.Type(bundleType)
	if cancelled.Valid {
		t := cancelled.Time
		s.CancelledAt = &t
	}
	return &s, nil
}

func (r *ScanRepository) AppendEvidence(ctx context.Context, id domain.ScanID, ev *evidence.Evidence) error {
	const q = `
INSERT INTO compliance_evidence
 (id, scan_id, control_id, kind, rule, source, collected_at, content_hash, status, raw_ref)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := r.db.ExecContext(ctx, q,
		ev.ID, id, ev.ControlID, ev.Kind, ev.Rule, ev.Source,
		ev.CollectedAt, ev.ContentHash, ev.Status, ev.RawRef,
	)
	return err
}

func (r *ScanRepository) Evidence(ctx context.Context, id domain.ScanID) ([]*evidence.Evidence, error) {
	const q = `
SELECT id, control_id, kind, rule, source, collected_at, content_hash, status, raw_ref
FROM compliance_evidence
WHERE scan_id=$1 ORDER BY collected_at ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*evidence.Evidence
	for rows.Next() {
		ev, err := evidenceRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *ScanRepository) EvidenceByID(ctx context.Context, id domain.ScanID, evidenceID string) (*evidence.Evidence, error) {
	const q = `
SELECT id, control_id, kind, rule, source, collected_at, content_hash, status, raw_ref
FROM compliance_evidence
WHERE scan_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, id, evidenceID)
	ev, err := evidenceRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: evidence %s", domain.ErrNotFound, evidenceID)
	}
	return ev, err
}

func evidenceRow(scan func(...any) error) (*evidence.Evidence, error) {
	var ev evidence.Evidence
	var controlID, kind, status string
	if err := scan(
		&ev.ID, &controlID, &kind, &ev.Rule, &ev.Source,
		&ev.CollectedAt, &ev.ContentHash, &status, &ev.RawRef,
	); err != nil {
		return nil, err
	}
	ev.ControlID = controls.ControlID(controlID)
	ev.Kind = evidence.Kind(kind)
	ev.Status = evidence.Status(status)
	return &ev, nil
}

func (r *ScanRepository) UpsertFinding(ctx context.Context, id domain.ScanID, f *findings.Finding) error {
	const q = `
INSERT INTO compliance_findings
 (scan_id, control_id, article, status, confidence, evidence_ids, gaps, recommendation, severity)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (scan_id, control_id) DO UPDATE SET
 status = EXCLUDED.status,
 confidence = EXCLUDED.confidence,
 evidence_ids = EXCLUDED.evidence_ids,
 gaps = EXCLUDED.gaps,
 recommendation = EXCLUDED.recommendation;`
	_, err := r.db.ExecContext(ctx, q,
		id, f.ControlID, f.Article, f.Status, f.Confidence,
		jsonColumn(f.EvidenceIDs), jsonColumn(f.Gaps),
		f.Recommendation, f.Severity,
	)
	return err
}

func (r *ScanRepository) Findings(ctx context.Context, id domain.ScanID) ([]*findings.Finding, error) {
	const q = `
SELECT control_id, article, status, confidence, evidence_ids, gaps, recommendation, severity
FROM compliance_findings
WHERE scan_id=$1 ORDER BY control_id ASC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*findings.Finding
	for rows.Next() {
		var f findings.Finding
		var controlID, status, severity string
		var evidenceIDs, gaps string
		if err := rows.Scan(
			&controlID, &f.Article, &status, &f.Confidence,
			&evidenceIDs, &gaps, &f.Recommendation, &severity,
		); err != nil {
			return nil, err
		}
		f.ControlID = controls.ControlID(controlID)
		f.Status = findings.Status(status)
		f.Severity = controls.Severity(severity)
		if err := json.Unmarshal([]byte(evidenceIDs), &f.EvidenceIDs); err != nil {
			return nil, fmt.Errorf("evidence_ids for %s: %w", controlID, err)
		}
		if err := json.Unmarshal([]byte(gaps), &f.Gaps); err != nil {
			return nil, fmt.Errorf("gaps for %s: %w", controlID, err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *ScanRepository) UpsertJob(ctx context.Context, j *domain.Job) error {
	const q = `
INSERT INTO compliance_scan_jobs
 (scan_id, analyzer, state, attempts, started_at, completed_at, last_error)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (scan_id, analyzer) DO UPDATE SET
 state = EXCLUDED.state,
 attempts = EXCLUDED.attempts,
 started_at = EXCLUDED.started_at,
 completed_at = EXCLUDED.completed_at,
 last_error = EXCLUDED.last_error;`
	_, err := r.db.ExecContext(ctx, q,
		j.ScanID, j.Analyzer, j.State, j.Attempts,
		nullableTimestamp(j.StartedAt), nullableTime(j.CompletedAt), j.LastError,
	)
	return err
}

func (r *ScanRepository) Jobs(ctx context.Context, id domain.ScanID) ([]*domain.Job, error) {
	const q = `
SELECT scan_id, analyzer, state, attempts, started_at, completed_at, last_error
FROM compliance_scan_jobs
WHERE scan_id=$1 ORDER BY analyzer ASC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Job
	for rows.Next() {
		var j domain.Job
		var state string
		var started, completed sql.NullTime
		if err := rows.Scan(
			&j.ScanID, &j.Analyzer, &state, &j.Attempts,
			&started, &completed, &j.LastError,
		); err != nil {
			return nil, err
		}
		j.State = domain.JobState(state)
		if started.Valid {
			j.StartedAt = started.Time
		}
		if completed.Valid {
			t := completed.Time
			j.CompletedAt = &t
		}
		out = append(out, &j)
	}
	return out, rows.Err()
}

func jsonColumn(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
