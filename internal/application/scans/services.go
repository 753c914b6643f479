package scans

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/aicomply/internal/application"
	"github.com/bryanwahyu/aicomply/internal/domain/analyzers"
	"github.com/bryanwahyu/aicomply/internal/domain/artifacts"
	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
	"github.com/bryanwahyu/aicomply/internal/domain/findings"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
	"github.com/bryanwahyu/aicomply/internal/domain/scanerrors"
)

// Service implements the pipeline use-cases. Safe for concurrent use.
type Service struct {
	Repo      domain.Repository
	Artifacts domain.ArtifactStore
	Extractor domain.Extractor
	Registry  *controls.Registry
	Analyzers map[analyzers.ID]analyzers.Analyzer
	Errors    scanerrors.Repository
	Clock     application.Clock
	Log       *zap.Logger

	// retry policy for analyzer attempts
	MaxAttempts    int
	AttemptTimeout time.Duration
	InitialBackoff time.Duration

	sem    chan struct{}
	mu     sync.Mutex
	states map[domain.ScanID]*scanState
}

// scanState is the in-process coordination record for one scan: its
// cancellation context and the per-control writer locks that serialize
// evidence append + reconcile for the same control.
type scanState struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cancelled bool
	controlMu map[controls.ControlID]*sync.Mutex
}

// Options for NewService; zero values fall back to defaults
type Options struct {
	Workers        int
	MaxAttempts    int
	AttemptTimeout time.Duration
	InitialBackoff time.Duration
}

func NewService(repo domain.Repository, store domain.ArtifactStore, extractor domain.Extractor,
	registry *controls.Registry, ans map[analyzers.ID]analyzers.Analyzer,
	errRepo scanerrors.Repository, clock application.Clock, log *zap.Logger, opts Options) *Service {

	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 60 * time.Second
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Repo:           repo,
		Artifacts:      store,
		Extractor:      extractor,
		Registry:       registry,
		Analyzers:      ans,
		Errors:         errRepo,
		Clock:          clock,
		Log:            log,
		MaxAttempts:    opts.MaxAttempts,
		AttemptTimeout: opts.AttemptTimeout,
		InitialBackoff: opts.InitialBackoff,
		sem:            make(chan struct{}, opts.Workers),
		states:         make(map[domain.ScanID]*scanState),
	}
}

// StartScan downloads and extracts the bundle, runs the structural scanner
// synchronously, and reconciles every control so initial findings exist when
// the call returns. Extraction failure is fatal for the scan and surfaces as
// ErrCorruptArtifact.
func (s *Service) StartScan(ctx context.Context, tenant string, ref artifacts.Ref) (*domain.Scan, error) {
	localPath, err := s.Artifacts.Download(ctx, ref.Key)
	if err != nil {
		return nil, fmt.Errorf("download bundle: %w", err)
	}
	defer os.Remove(localPath)

	bundle, err := s.Extractor.Extract(ctx, ref.Key, localPath)
	if err != nil {
		return nil, err
	}
	defer bundle.Close()

	if ref.SHA256 == "" {
		ref.SHA256 = bundle.SHA256
	}
	if ref.ID == "" {
		ref.ID = uuid.New().String()
	}

	now := s.Clock.Now()
	scan := &domain.Scan{
		ID:        domain.ScanID(uuid.New().String()),
		TenantID:  tenant,
		Bundle:    ref,
		StartedAt: now,
	}
	if err := s.Repo.SaveScan(ctx, scan); err != nil {
		return nil, err
	}
	st := s.state(scan)

	scanner := &Scanner{Registry: s.Registry}
	for _, ev := range scanner.Scan(bundle, now) {
		if err := s.appendEvidence(ctx, st, scan.ID, ev); err != nil {
			return nil, err
		}
	}

	// Reconcile the full control set so coverage is defined from the start,
	// gaps included.
	for _, ctrl := range s.Registry.All() {
		if err := s.reconcileControl(ctx, scan.ID, ctrl.ID); err != nil {
			return nil, err
		}
	}

	s.Log.Sugar().Infow("scan started",
		"tenant", tenant, "scan_id", scan.ID, "bundle", ref.Key, "files", len(bundle.Files()))
	return scan, nil
}

// GetScan returns one scan by id
func (s *Service) GetScan(ctx context.Context, tenant string, id domain.ScanID) (*domain.Scan, error) {
	return s.Repo.GetScan(ctx, tenant, id)
}

// Latest returns the tenant's most recent scans
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Scan, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// GetFindings returns the scan's current findings in registry order
func (s *Service) GetFindings(ctx context.Context, tenant string, id domain.ScanID) ([]*findings.Finding, error) {
	if _, err := s.Repo.GetScan(ctx, tenant, id); err != nil {
		return nil, err
	}
	fs, err := s.Repo.Findings(ctx, id)
	if err != nil {
		return nil, err
	}
	order := make(map[controls.ControlID]int, s.Registry.Len())
	for i, ctrl := range s.Registry.All() {
		order[ctrl.ID] = i
	}
	sort.SliceStable(fs, func(i, j int) bool { return order[fs[i].ControlID] < order[fs[j].ControlID] })
	return fs, nil
}

// GetCoverage recomputes coverage from the current findings. Live
// projection, never cached at write time.
func (s *Service) GetCoverage(ctx context.Context, tenant string, id domain.ScanID) (findings.CoverageStats, error) {
	fs, err := s.GetFindings(ctx, tenant, id)
	if err != nil {
		return findings.CoverageStats{}, err
	}
	return findings.ComputeCoverage(fs), nil
}

// GetEvidence returns one evidence item, raw payload reference included
func (s *Service) GetEvidence(ctx context.Context, tenant string, id domain.ScanID, evidenceID string) (*evidence.Evidence, error) {
	if _, err := s.Repo.GetScan(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.Repo.EvidenceByID(ctx, id, evidenceID)
}

// ListEvidence returns the scan's current evidence view (superseded items
// collapsed)
func (s *Service) ListEvidence(ctx context.Context, tenant string, id domain.ScanID) ([]*evidence.Evidence, error) {
	if _, err := s.Repo.GetScan(ctx, tenant, id); err != nil {
		return nil, err
	}
	log, err := s.Repo.Evidence(ctx, id)
	if err != nil {
		return nil, err
	}
	return evidence.Collapse(log).Items(), nil
}

// AnalyzerErrors returns the attempt-level failure audit trail for a scan
func (s *Service) AnalyzerErrors(ctx context.Context, tenant string, id domain.ScanID, limit int) ([]*scanerrors.AnalyzerError, error) {
	if _, err := s.Repo.GetScan(ctx, tenant, id); err != nil {
		return nil, err
	}
	if s.Errors == nil {
		return nil, nil
	}
	return s.Errors.ListByScan(ctx, tenant, string(id), limit)
}

// CancelScan stops dispatching queued analyzers and flags the scan so late
// analyzer completions are discarded. In-flight invocations are cancelled
// best-effort; the caller is released immediately.
func (s *Service) CancelScan(ctx context.Context, tenant string, id domain.ScanID) error {
	scan, err := s.Repo.GetScan(ctx, tenant, id)
	if err != nil {
		return err
	}
	if scan.Cancelled() {
		return nil
	}
	now := s.Clock.Now()
	scan.CancelledAt = &now
	if err := s.Repo.SaveScan(ctx, scan); err != nil {
		return err
	}

	st := s.state(scan)
	st.mu.Lock()
	st.cancelled = true
	st.mu.Unlock()
	st.cancel()

	s.Log.Sugar().Infow("scan cancelled", "tenant", tenant, "scan_id", id)
	return nil
}

// state returns the in-process coordination record for a scan, creating it on
// first use (e.g. after a restart).
func (s *Service) state(scan *domain.Scan) *scanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[scan.ID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		st = &scanState{
			ctx:       ctx,
			cancel:    cancel,
			cancelled: scan.Cancelled(),
			controlMu: make(map[controls.ControlID]*sync.Mutex),
		}
		if st.cancelled {
			cancel()
		}
		s.states[scan.ID] = st
	}
	return st
}

// appendEvidence records one evidence item and reconciles its control under
// the control's writer lock. Evidence arriving after cancellation is
// discarded, not appended.
func (s *Service) appendEvidence(ctx context.Context, st *scanState, id domain.ScanID, ev *evidence.Evidence) error {
	st.mu.Lock()
	if st.cancelled {
		st.mu.Unlock()
		return nil
	}
	mu, ok := st.controlMu[ev.ControlID]
	if !ok {
		mu = &sync.Mutex{}
		st.controlMu[ev.ControlID] = mu
	}
	st.mu.Unlock()

	mu.Lock()
	defer mu.Unlock()

	st.mu.Lock()
	cancelled := st.cancelled
	st.mu.Unlock()
	if cancelled {
		return nil
	}

	if err := s.Repo.AppendEvidence(ctx, id, ev); err != nil {
		return err
	}
	return s.reconcileControl(ctx, id, ev.ControlID)
}

// reconcileControl recomputes one control's finding from its current evidence
func (s *Service) reconcileControl(ctx context.Context, id domain.ScanID, controlID controls.ControlID) error {
	ctrl, err := s.Registry.Get(controlID)
	if err != nil {
		return err
	}
	log, err := s.Repo.Evidence(ctx, id)
	if err != nil {
		return err
	}
	evs := evidence.Collapse(log).ByControl(controlID)
	return s.Repo.UpsertFinding(ctx, id, findings.Reconcile(ctrl, evs))
}
