package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/aicomply/internal/domain/analyzers"
	"github.com/bryanwahyu/aicomply/internal/domain/artifacts"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

// Runner invokes the external analyzer tools as opaque commands and turns
// their structured output into analyzer results. One Adapter per tool shares
// the runner's store and extractor.
type Runner struct {
	store     domain.ArtifactStore
	extractor domain.Extractor
}

func NewRunner(store domain.ArtifactStore, extractor domain.Extractor) *Runner {
	return &Runner{store: store, extractor: extractor}
}

// Adapters builds the full analyzer set backed by this runner
func (r *Runner) Adapters() map[analyzers.ID]analyzers.Analyzer {
	out := make(map[analyzers.ID]analyzers.Analyzer, len(analyzers.CapabilityTable))
	for id := range analyzers.CapabilityTable {
		out[id] = &Adapter{runner: r, tool: id}
	}
	return out
}

// supportedTypes declares which artifact type each tool accepts; anything
// else is UnsupportedArtifact, terminal with no retry.
var supportedTypes = map[analyzers.ID]artifacts.Type{
	analyzers.Deps:          artifacts.TypeCode,
	analyzers.Bandit:        artifacts.TypeCode,
	analyzers.ONNXMeta:      artifacts.TypeModel,
	analyzers.DatasetSanity: artifacts.TypeDataset,
}

// Adapter wraps one external analyzer behind the uniform invocation contract
type Adapter struct {
	runner *Runner
	tool   analyzers.ID
}

func (a *Adapter) ID() analyzers.ID { return a.tool }

func (a *Adapter) Capabilities() []analyzers.Capability {
	return analyzers.CapabilityTable[a.tool]
}

// Invoke downloads the artifact, runs the tool with the caller's deadline,
// uploads the raw output, and returns the summarized sections. Idempotent for
// a given artifact content hash: the raw output key and the sections depend
// only on the artifact and the tool.
func (a *Adapter) Invoke(ctx context.Context, ref artifacts.Ref) (*analyzers.Result, error) {
	if want := supportedTypes[a.tool]; ref.Type != want {
		return nil, analyzers.NewUnsupportedArtifact(a.tool,
			fmt.Errorf("artifact type %q, tool accepts %q", ref.Type, want))
	}

	localPath, err := a.runner.store.Download(ctx, ref.Key)
	if err != nil {
		return nil, analyzers.NewToolCrashed(a.tool, err)
	}
	defer os.Remove(localPath)

	var target string
	switch a.tool {
	case analyzers.Deps, analyzers.Bandit:
		bundle, err := a.runner.extractor.Extract(ctx, ref.Key, localPath)
		if err != nil {
			return nil, analyzers.NewUnsupportedArtifact(a.tool, err)
		}
		defer bundle.Close()
		target, err = a.codeTarget(bundle)
		if err != nil {
			// nothing for the tool to inspect; an empty result is a valid
			// partial satisfaction of the declared capabilities
			return &analyzers.Result{Analyzer: a.tool, ArtifactHash: ref.SHA256}, nil
		}
	default:
		target = localPath
	}

	stdout, runErr := a.run(ctx, target)
	if ctx.Err() == context.DeadlineExceeded {
		return nil, analyzers.NewTimeout(a.tool, ctx.Err())
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sections := a.summarize(stdout)
	if runErr != nil && len(sections) == 0 {
		// non-zero exit with parseable findings is data, not failure; a
		// failed process with nothing parseable is a crash
		return nil, analyzers.NewToolCrashed(a.tool, runErr)
	}

	rawRef, err := a.uploadRaw(ctx, ref, stdout)
	if err != nil {
		return nil, analyzers.NewToolCrashed(a.tool, err)
	}

	return &analyzers.Result{
		Analyzer:     a.tool,
		ArtifactHash: ref.SHA256,
		Sections:     sections,
		RawRef:       rawRef,
	}, nil
}

// codeTarget picks what a code analyzer inspects inside the bundle
func (a *Adapter) codeTarget(bundle *domain.Bundle) (string, error) {
	if a.tool == analyzers.Bandit {
		return bundle.Root(), nil
	}
	for _, f := range bundle.Files() {
		if filepath.Base(f.Path) == "requirements.txt" {
			return filepath.Join(bundle.Root(), filepath.FromSlash(f.Path)), nil
		}
	}
	return "", errors.New("no requirements.txt in bundle")
}

func (a *Adapter) run(ctx context.Context, target string) ([]byte, error) {
	var cmd *exec.Cmd
	switch a.tool {
	case analyzers.Deps:
		cmd = exec.CommandContext(ctx, "pip-audit", "--requirement", target, "--format", "json")
	case analyzers.Bandit:
		cmd = exec.CommandContext(ctx, "bandit", "-q", "-r", target, "-f", "json")
	case analyzers.ONNXMeta:
		cmd = exec.CommandContext(ctx, "onnx-meta", "--json", target)
	case analyzers.DatasetSanity:
		cmd = exec.CommandContext(ctx, "dataset-sanity", "--json", target)
	default:
		return nil, fmt.Errorf("unsupported tool: %s", a.tool)
	}
	return cmd.Output()
}

// summarize builds the per-control sections from the tool's stdout. Output
// that fails to parse yields no sections; the mapper then records no
// evidence for the affected capabilities.
func (a *Adapter) summarize(stdout []byte) map[string]json.RawMessage {
	sections := make(map[string]json.RawMessage)
	switch a.tool {
	case analyzers.Deps:
		var parsed struct {
			Dependencies []struct {
				Name  string            `json:"name"`
				Vulns []json.RawMessage `json:"vulns"`
			} `json:"dependencies"`
		}
		if json.Unmarshal(stdout, &parsed) != nil {
			return nil
		}
		vulnerable := 0
		for _, d := range parsed.Dependencies {
			if len(d.Vulns) > 0 {
				vulnerable++
			}
		}
		sections["CTRL-015-004"] = mustJSON(map[string]any{
			"tool":                "pip-audit",
			"vulnerable_packages": vulnerable,
			"total_dependencies":  len(parsed.Dependencies),
		})

	case analyzers.Bandit:
		var parsed struct {
			Results []struct {
				IssueSeverity string `json:"issue_severity"`
			} `json:"results"`
		}
		if json.Unmarshal(stdout, &parsed) != nil {
			return nil
		}
		high, medium := 0, 0
		for _, r := range parsed.Results {
			switch strings.ToUpper(r.IssueSeverity) {
			case "HIGH":
				high++
			case "MEDIUM":
				medium++
			}
		}
		sections["CTRL-015-005"] = mustJSON(map[string]any{
			"tool":            "bandit",
			"high_severity":   high,
			"medium_severity": medium,
			"total_issues":    len(parsed.Results),
		})

	case analyzers.ONNXMeta:
		if !json.Valid(stdout) {
			return nil
		}
		sections["CTRL-011-006"] = json.RawMessage(stdout)

	case analyzers.DatasetSanity:
		if !json.Valid(stdout) {
			return nil
		}
		sections["CTRL-010-002"] = json.RawMessage(stdout)
	}
	return sections
}

// uploadRaw persists the tool's raw output next to the artifact, keyed so
// re-runs on the same content overwrite rather than accumulate
func (a *Adapter) uploadRaw(ctx context.Context, ref artifacts.Ref, stdout []byte) (string, error) {
	tmp, err := os.CreateTemp("", fmt.Sprintf("%s-*.json", a.tool))
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(stdout); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	tmp.Close()

	key := fmt.Sprintf("evidence/%s/%s.json", ref.SHA256, a.tool)
	return a.runner.store.UploadAndCleanup(ctx, tmp.Name(), key)
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
