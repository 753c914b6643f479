package scanerrors

import "context"

// Repository defines persistence for analyzer attempt errors
type Repository interface {
	Save(ctx context.Context, e *AnalyzerError) error
	ListByScan(ctx context.Context, tenant string, scanID string, limit int) ([]*AnalyzerError, error)
}
