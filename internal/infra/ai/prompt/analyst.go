package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior AI-governance compliance analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase status values: compliant, partial, non_compliant, not_applicable.
- Base every statement strictly on the findings and coverage provided; never invent controls or evidence.
- gaps is an array of the most important unmet obligations, ordered by severity. Keep items concise.
- summary is 2-4 sentences covering overall posture and the weakest articles.

Schema (example with empty values):
{
  "summary": "<string>",
  "coverage_pct": 0,
  "status_counts": {"compliant": 0, "partial": 0, "non_compliant": 0, "not_applicable": 0},
  "gaps": [
    {
      "control_id": "<string>",
      "article": "<string>",
      "severity": "<critical|high|medium|low|info>",
      "action": "<string>"
    }
  ],
  "advice": "<string>"
}`
}

// GetUserPrompt wraps the reconciled findings payload for the model.
func GetUserPrompt(findingsJSON string) string {
	return fmt.Sprintf("Review this compliance scan result and respond with the JSON per schema. Findings: %s", findingsJSON)
}
