package controls

import (
	"errors"
	"fmt"
)

// ErrNotFound returned when a control id is not in the registry
var ErrNotFound = errors.New("control not found")

// Registry is the read-only catalog of controls, keyed by id and grouped by
// article. Loaded once at startup; findings computed against one registry
// snapshot stay reproducible for its lifetime.
type Registry struct {
	ordered   []Control
	byID      map[ControlID]int
	byArticle map[string][]int
	articles  []string
}

// NewRegistry validates the definition set and builds the lookup indexes.
// Duplicate ids or a reference to an article outside knownArticles fail the
// load; callers are expected to treat that as fatal.
func NewRegistry(defs []Control, knownArticles []string) (*Registry, error) {
	known := make(map[string]bool, len(knownArticles))
	for _, a := range knownArticles {
		known[a] = true
	}

	r := &Registry{
		ordered:   make([]Control, 0, len(defs)),
		byID:      make(map[ControlID]int, len(defs)),
		byArticle: make(map[string][]int),
		articles:  knownArticles,
	}
	for _, c := range defs {
		if c.ID == "" {
			return nil, fmt.Errorf("control with empty id (article %q)", c.Article)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate control id: %s", c.ID)
		}
		if !known[c.Article] {
			return nil, fmt.Errorf("control %s references undefined article %q", c.ID, c.Article)
		}
		idx := len(r.ordered)
		r.ordered = append(r.ordered, c)
		r.byID[c.ID] = idx
		r.byArticle[c.Article] = append(r.byArticle[c.Article], idx)
	}
	return r, nil
}

// Get looks up one control by id
func (r *Registry) Get(id ControlID) (Control, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Control{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.ordered[idx], nil
}

// ListByArticle returns the article's controls in insertion order
func (r *Registry) ListByArticle(article string) []Control {
	idxs := r.byArticle[article]
	out := make([]Control, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.ordered[i])
	}
	return out
}

// All returns every control in insertion order
func (r *Registry) All() []Control {
	out := make([]Control, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Articles returns the known article list in declaration order
func (r *Registry) Articles() []string {
	out := make([]string, len(r.articles))
	copy(out, r.articles)
	return out
}

// Len returns the number of controls
func (r *Registry) Len() int { return len(r.ordered) }
