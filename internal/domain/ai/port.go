package ai

import "context"

// Client produces a narrative analysis from a scan's findings JSON
type Client interface {
	Analyze(ctx context.Context, findingsJSON string) (string, error)
}
