package analyst

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bryanwahyu/aicomply/internal/application"
	appscans "github.com/bryanwahyu/aicomply/internal/application/scans"
	"github.com/bryanwahyu/aicomply/internal/domain/ai"
	domain "github.com/bryanwahyu/aicomply/internal/domain/analyst"
	scansdomain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

// Service turns a scan's reconciled findings into a stored narrative
// analysis. Reporting only: nothing here feeds back into findings.
type Service struct {
	Client ai.Client
	Repo   domain.Repository
	Scans  *appscans.Service
	Clock  application.Clock
}

func NewService(client ai.Client, repo domain.Repository, scans *appscans.Service, clock application.Clock) *Service {
	return &Service{Client: client, Repo: repo, Scans: scans, Clock: clock}
}

// AnalyzeAndStore loads the scan's findings and coverage, asks the AI client
// for a narrative, and persists the result.
func (s *Service) AnalyzeAndStore(ctx context.Context, tenant string, scanID scansdomain.ScanID) (*domain.Analysis, error) {
	fs, err := s.Scans.GetFindings(ctx, tenant, scanID)
	if err != nil {
		return nil, err
	}
	if len(fs) == 0 {
		return nil, fmt.Errorf("no findings for scan %s", scanID)
	}
	coverage, err := s.Scans.GetCoverage(ctx, tenant, scanID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"coverage": coverage,
		"findings": fs,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.Client.Analyze(ctx, string(payload))
	if err != nil {
		return nil, err
	}

	a := &domain.Analysis{
		ID:        domain.AnalysisID(uuid.New().String()),
		TenantID:  tenant,
		ScanID:    string(scanID),
		Result:    result,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// LatestByScan returns the most recent stored analysis for a scan
func (s *Service) LatestByScan(ctx context.Context, tenant string, scanID string) (*domain.Analysis, error) {
	return s.Repo.LatestByScan(ctx, tenant, scanID)
}

// ListAnalyses pages through a tenant's stored analyses
func (s *Service) ListAnalyses(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Analysis, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}
