package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
	"github.com/bryanwahyu/aicomply/internal/domain/findings"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

// Repository is an in-memory implementation of the scan persistence port.
// Used in tests and for running the server without a database.
type Repository struct {
	mu        sync.RWMutex
	scans     map[domain.ScanID]*domain.Scan
	evidence  map[domain.ScanID][]*evidence.Evidence
	evidenceI map[domain.ScanID]map[string]*evidence.Evidence
	findings  map[domain.ScanID]map[string]*findings.Finding
	jobs      map[domain.ScanID]map[string]*domain.Job
}

func NewRepository() *Repository {
	return &Repository{
		scans:     make(map[domain.ScanID]*domain.Scan),
		evidence:  make(map[domain.ScanID][]*evidence.Evidence),
		evidenceI: make(map[domain.ScanID]map[string]*evidence.Evidence),
		findings:  make(map[domain.ScanID]map[string]*findings.Finding),
		jobs:      make(map[domain.ScanID]map[string]*domain.Job),
	}
}

func (r *Repository) SaveScan(ctx context.Context, s *domain.Scan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.scans[s.ID] = &cp
	return nil
}

func (r *Repository) GetScan(ctx context.Context, tenant string, id domain.ScanID) (*domain.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scans[id]
	if !ok || s.TenantID != tenant {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	cp := *s
	return &cp, nil
}

func (r *Repository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Scan
	for _, s := range r.scans {
		if s.TenantID == tenant {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) AppendEvidence(ctx context.Context, id domain.ScanID, ev *evidence.Evidence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ev
	r.evidence[id] = append(r.evidence[id], &cp)
	idx, ok := r.evidenceI[id]
	if !ok {
		idx = make(map[string]*evidence.Evidence)
		r.evidenceI[id] = idx
	}
	idx[ev.ID] = &cp
	return nil
}

func (r *Repository) Evidence(ctx context.Context, id domain.ScanID) ([]*evidence.Evidence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log := r.evidence[id]
	out := make([]*evidence.Evidence, 0, len(log))
	for _, ev := range log {
		cp := *ev
		out = append(out, &cp)
	}
	return out, nil
}

func (r *Repository) EvidenceByID(ctx context.Context, id domain.ScanID, evidenceID string) (*evidence.Evidence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.evidenceI[id][evidenceID]
	if !ok {
		return nil, fmt.Errorf("evidence not found: %s", evidenceID)
	}
	cp := *ev
	return &cp, nil
}

func (r *Repository) UpsertFinding(ctx context.Context, id domain.ScanID, f *findings.Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.findings[id]
	if !ok {
		m = make(map[string]*findings.Finding)
		r.findings[id] = m
	}
	cp := *f
	m[string(f.ControlID)] = &cp
	return nil
}

func (r *Repository) Findings(ctx context.Context, id domain.ScanID) ([]*findings.Finding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.findings[id]
	out := make([]*findings.Finding, 0, len(m))
	for _, f := range m {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ControlID < out[j].ControlID })
	return out, nil
}

func (r *Repository) UpsertJob(ctx context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.jobs[j.ScanID]
	if !ok {
		m = make(map[string]*domain.Job)
		r.jobs[j.ScanID] = m
	}
	cp := *j
	m[j.Analyzer] = &cp
	return nil
}

func (r *Repository) Jobs(ctx context.Context, id domain.ScanID) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.jobs[id]
	out := make([]*domain.Job, 0, len(m))
	for _, j := range m {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Analyzer < out[j].Analyzer })
	return out, nil
}
