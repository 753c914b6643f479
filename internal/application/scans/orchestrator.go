package scans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff"

	"github.com/bryanwahyu/aicomply/internal/domain/analyzers"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
	"github.com/bryanwahyu/aicomply/internal/domain/scanerrors"
)

// ErrUnknownAnalyzer returned when a requested analyzer id is not configured
var ErrUnknownAnalyzer = errors.New("unknown analyzer")

// RunAnalyzers accepts a set of analyzers to run against the scan's bundle
// and returns immediately with the per-analyzer states. Idempotent per
// analyzer id: one that already has a job for this scan is a no-op reporting
// its current state. Progress is observed by polling Status.
func (s *Service) RunAnalyzers(ctx context.Context, tenant string, id domain.ScanID, ids []string) (map[string]domain.JobState, error) {
	scan, err := s.Repo.GetScan(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if scan.Cancelled() {
		return nil, domain.ErrCancelled
	}
	for _, a := range ids {
		if _, ok := s.Analyzers[analyzers.ID(a)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAnalyzer, a)
		}
	}

	existing, err := s.Repo.Jobs(ctx, id)
	if err != nil {
		return nil, err
	}
	byAnalyzer := make(map[string]*domain.Job, len(existing))
	for _, j := range existing {
		byAnalyzer[j.Analyzer] = j
	}

	st := s.state(scan)
	out := make(map[string]domain.JobState, len(ids))
	for _, a := range ids {
		if j, ok := byAnalyzer[a]; ok {
			out[a] = j.State
			continue
		}
		job := &domain.Job{ScanID: id, Analyzer: a, State: domain.JobQueued}
		if err := s.Repo.UpsertJob(ctx, job); err != nil {
			return nil, err
		}
		out[a] = domain.JobQueued
		go s.runJob(st, scan, job, s.Analyzers[analyzers.ID(a)])
	}
	return out, nil
}

// Status returns the analyzer-to-state mapping for polling callers
func (s *Service) Status(ctx context.Context, tenant string, id domain.ScanID) (map[string]domain.JobState, error) {
	if _, err := s.Repo.GetScan(ctx, tenant, id); err != nil {
		return nil, err
	}
	jobs, err := s.Repo.Jobs(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.JobState, len(jobs))
	for _, j := range jobs {
		out[j.Analyzer] = j.State
	}
	return out, nil
}

// Jobs returns the full orchestration records for one scan
func (s *Service) Jobs(ctx context.Context, tenant string, id domain.ScanID) ([]*domain.Job, error) {
	if _, err := s.Repo.GetScan(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.Repo.Jobs(ctx, id)
}

// runJob drives one analyzer through its state machine on a worker slot.
// Runs detached from the request context; persistence uses Background so a
// finished attempt is always recorded.
func (s *Service) runJob(st *scanState, scan *domain.Scan, job *domain.Job, an analyzers.Analyzer) {
	log := s.Log.Sugar()

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-st.ctx.Done():
		s.finishJob(job, domain.JobFailed, errors.New("scan cancelled before dispatch"))
		return
	}

	var result *analyzers.Result
	var lastErr error

	op := func() error {
		if st.ctx.Err() != nil {
			lastErr = st.ctx.Err()
			return backoff.Permanent(lastErr)
		}

		job.Attempts++
		job.State = domain.JobRunning
		if job.StartedAt.IsZero() {
			job.StartedAt = s.Clock.Now()
		}
		s.persistJob(job)

		actx, cancel := context.WithTimeout(st.ctx, s.AttemptTimeout)
		res, err := an.Invoke(actx, scan.Bundle)
		cancel()
		if err != nil {
			lastErr = err
			s.recordAttemptError(scan, job, err)
			if !analyzers.Retriable(err) {
				return backoff.Permanent(err)
			}
			job.State = domain.JobQueued
			s.persistJob(job)
			return err
		}
		result = res
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.InitialBackoff
	bo.MaxElapsedTime = 0
	err := backoff.Retry(op, backoff.WithMaxRetries(bo, uint64(s.MaxAttempts-1)))

	if err != nil {
		terminal := domain.JobFailed
		if errors.Is(lastErr, context.Canceled) {
			lastErr = errors.New("scan cancelled")
		} else if analyzers.Classify(lastErr) == analyzers.ClassTimeout {
			terminal = domain.JobTimedOut
		}
		s.finishJob(job, terminal, lastErr)
		log.Warnw("analyzer terminal failure",
			"scan_id", scan.ID, "analyzer", job.Analyzer, "state", terminal, "attempts", job.Attempts)
		return
	}

	now := s.Clock.Now()
	ctx := context.Background()
	for _, ev := range analyzers.MapResult(result, an.Capabilities(), now) {
		if err := s.appendEvidence(ctx, st, scan.ID, ev); err != nil {
			log.Errorw("append evidence", "scan_id", scan.ID, "analyzer", job.Analyzer, "err", err)
		}
	}
	s.finishJob(job, domain.JobSucceeded, nil)
	log.Infow("analyzer succeeded",
		"scan_id", scan.ID, "analyzer", job.Analyzer, "attempts", job.Attempts)
}

// finishJob moves a job into a terminal state exactly once
func (s *Service) finishJob(job *domain.Job, state domain.JobState, cause error) {
	if job.State.Terminal() {
		return
	}
	job.State = state
	now := s.Clock.Now()
	job.CompletedAt = &now
	if cause != nil {
		job.LastError = cause.Error()
	}
	s.persistJob(job)
}

func (s *Service) persistJob(job *domain.Job) {
	if err := s.Repo.UpsertJob(context.Background(), job); err != nil {
		s.Log.Sugar().Errorw("persist job", "scan_id", job.ScanID, "analyzer", job.Analyzer, "err", err)
	}
}

// recordAttemptError writes the audit row for one failed attempt
func (s *Service) recordAttemptError(scan *domain.Scan, job *domain.Job, cause error) {
	if s.Errors == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{"bundle": scan.Bundle.Key})
	e := &scanerrors.AnalyzerError{
		TenantID:    scan.TenantID,
		ScanID:      string(scan.ID),
		Analyzer:    job.Analyzer,
		Class:       string(analyzers.Classify(cause)),
		Attempt:     job.Attempts,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Errors.Save(context.Background(), e); err != nil {
		s.Log.Sugar().Errorw("persist analyzer error", "scan_id", scan.ID, "err", err)
	}
}
