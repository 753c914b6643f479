package scans

import (
	"bytes"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	"github.com/bryanwahyu/aicomply/internal/domain/evidence"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

// maxContentProbe caps how much of a file is read for contains: rules
const maxContentProbe = 1 << 20

// Scanner runs the cheap, synchronous structural inspection of a bundle
// against the registry's expected-source patterns. Deterministic: controls in
// registry order, patterns in declaration order, files in path order, and one
// evidence item per satisfied rule (the first match only), so coverage stays
// stable across bundles of the same shape with reordered files.
type Scanner struct {
	Registry *controls.Registry
}

// Scan inspects the bundle and returns the structural evidence. Absence of a
// match emits nothing; the reconciler interprets absence as a gap.
func (sc *Scanner) Scan(bundle *domain.Bundle, now time.Time) []*evidence.Evidence {
	files := bundle.Files()

	var out []*evidence.Evidence
	for _, ctrl := range sc.Registry.All() {
		for _, pattern := range ctrl.EvidenceSources {
			if strings.HasPrefix(pattern, "analyzer:") {
				continue
			}
			matched, ok := matchRule(bundle, files, pattern)
			if !ok {
				continue
			}
			out = append(out, &evidence.Evidence{
				ID:          uuid.New().String(),
				ControlID:   ctrl.ID,
				Kind:        kindForCategory(ctrl.Category),
				Rule:        pattern,
				Source:      matched.Path,
				CollectedAt: now,
				ContentHash: matched.SHA256,
				Status:      evidence.StatusValid,
			})
		}
	}
	return out
}

// matchRule finds the first file satisfying the pattern
func matchRule(bundle *domain.Bundle, files []domain.BundleFile, pattern string) (domain.BundleFile, bool) {
	if sub, ok := strings.CutPrefix(pattern, "contains:"); ok {
		needle := []byte(strings.ToLower(sub))
		for _, f := range files {
			if f.Size > maxContentProbe {
				continue
			}
			content, err := bundle.ReadFile(f.Path)
			if err != nil {
				continue
			}
			if bytes.Contains(bytes.ToLower(content), needle) {
				return f, true
			}
		}
		return domain.BundleFile{}, false
	}

	for _, f := range files {
		if matchPath(pattern, f.Path) {
			return f, true
		}
	}
	return domain.BundleFile{}, false
}

// matchPath applies one path pattern:
//   - a trailing slash means directory prefix ("tests/")
//   - a pattern with a slash matches the full relative path
//   - otherwise the pattern matches the file's base name at any depth
func matchPath(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(p, pattern)
	}
	if strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, p)
		return err == nil && ok
	}
	ok, err := path.Match(pattern, path.Base(p))
	return err == nil && ok
}

func kindForCategory(c controls.Category) evidence.Kind {
	switch c {
	case controls.CategoryCode:
		return evidence.KindCodePattern
	case controls.CategoryConfig, controls.CategoryCI:
		return evidence.KindConfig
	case controls.CategoryTest:
		return evidence.KindTestResult
	case controls.CategoryData, controls.CategoryModel:
		return evidence.KindMetric
	default:
		return evidence.KindFile
	}
}
