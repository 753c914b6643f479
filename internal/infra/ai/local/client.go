package local

import (
	"context"
	"encoding/json"
)

// Client is the offline analyst used when no AI provider is configured. It
// derives a narrative from the findings payload deterministically and emits
// the same JSON schema the OpenAI client is instructed to produce.
type Client struct{}

func NewClient() *Client { return &Client{} }

type gap struct {
	ControlID string `json:"control_id"`
	Article   string `json:"article"`
	Severity  string `json:"severity"`
	Action    string `json:"action"`
}

type output struct {
	Summary      string         `json:"summary"`
	CoveragePct  float64        `json:"coverage_pct"`
	StatusCounts map[string]int `json:"status_counts"`
	Gaps         []gap          `json:"gaps"`
	Advice       string         `json:"advice"`
}

var severityRank = map[string]int{
	"critical": 0, "high": 1, "medium": 2, "low": 3, "info": 4,
}

func (c *Client) Analyze(ctx context.Context, findingsJSON string) (string, error) {
	var payload struct {
		Coverage struct {
			Percentage float64 `json:"percentage"`
		} `json:"coverage"`
		Findings []struct {
			ControlID      string `json:"control_id"`
			Article        string `json:"article"`
			Status         string `json:"status"`
			Severity       string `json:"severity"`
			Recommendation string `json:"recommendation"`
		} `json:"findings"`
	}

	out := output{
		StatusCounts: map[string]int{
			"compliant": 0, "partial": 0, "non_compliant": 0, "not_applicable": 0,
		},
		Gaps: []gap{},
	}
	if err := json.Unmarshal([]byte(findingsJSON), &payload); err != nil {
		out.Summary = "Findings payload could not be parsed; no assessment produced."
		out.Advice = "Re-run the scan and retry the analysis."
		b, _ := json.Marshal(out)
		return string(b), nil
	}

	out.CoveragePct = payload.Coverage.Percentage
	for _, f := range payload.Findings {
		out.StatusCounts[f.Status]++
		if f.Status == "non_compliant" || f.Status == "partial" {
			out.Gaps = append(out.Gaps, gap{
				ControlID: f.ControlID,
				Article:   f.Article,
				Severity:  f.Severity,
				Action:    f.Recommendation,
			})
		}
	}

	// highest severity first, stable within a rank
	for i := 1; i < len(out.Gaps); i++ {
		for j := i; j > 0 && severityRank[out.Gaps[j].Severity] < severityRank[out.Gaps[j-1].Severity]; j-- {
			out.Gaps[j], out.Gaps[j-1] = out.Gaps[j-1], out.Gaps[j]
		}
	}
	if len(out.Gaps) > 10 {
		out.Gaps = out.Gaps[:10]
	}

	switch {
	case out.StatusCounts["non_compliant"] > 0:
		out.Summary = "The scan found controls with no satisfying evidence. Compliance posture is incomplete and the listed gaps need remediation before the system can be considered aligned."
		out.Advice = "Close the non-compliant gaps first, starting with the highest severity controls, then re-scan to confirm."
	case out.StatusCounts["partial"] > 0:
		out.Summary = "Most controls are evidenced but several are only partially satisfied. The remaining gaps are narrow and should be closed by supplying the missing evidence sources."
		out.Advice = "Provide the missing evidence for partially satisfied controls and re-run the affected analyzers."
	default:
		out.Summary = "All automated and semi-automated controls are evidenced. Manual controls still require human review before sign-off."
		out.Advice = "Schedule manual review for the controls that automation cannot evaluate."
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
