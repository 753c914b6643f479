package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/bryanwahyu/aicomply/internal/domain/scanerrors"
)

type AnalyzerErrorRepository struct {
	db *sql.DB
}

func NewAnalyzerErrorRepository(db *sql.DB) *AnalyzerErrorRepository {
	return &AnalyzerErrorRepository{db: db}
}

func (r *AnalyzerErrorRepository) Save(ctx context.Context, e *domain.AnalyzerError) error {
	const q = `
INSERT INTO compliance_analyzer_errors
  (tenant_id, scan_id, analyzer, class, attempt, message, details_json, created_at)
VALUES (?,?,?,?,?,?,?,?)
`
	tenant := stringOrDash(e.TenantID)
	scan := stringOrDash(e.ScanID)
	analyzer := stringOrDash(e.Analyzer)
	class := stringOrDash(e.Class)
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	details := e.DetailsJSON
	if strings.TrimSpace(details) == "" {
		details = "{}"
	} else {
		// ensure valid json; if invalid, wrap as string field
		var js any
		if json.Unmarshal([]byte(details), &js) != nil {
			b, _ := json.Marshal(map[string]string{"raw": details})
			details = string(b)
		}
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, tenant, scan, analyzer, class, e.Attempt, msg, details, created)
	return err
}

func (r *AnalyzerErrorRepository) ListByScan(ctx context.Context, tenant string, scanID string, limit int) ([]*domain.AnalyzerError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, scan_id, analyzer, class, attempt, message, details_json, created_at
FROM compliance_analyzer_errors
WHERE tenant_id = ? AND scan_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, scanID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AnalyzerError
	for rows.Next() {
		var e domain.AnalyzerError
		var created time.Time
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ScanID, &e.Analyzer, &e.Class, &e.Attempt, &e.Message, &e.DetailsJSON, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = created
		out = append(out, &e)
	}
	return out, rows.Err()
}
