package controls

import (
	"errors"
	"testing"
)

func TestNewRegistryValidation(t *testing.T) {
	known := []string{"Article 9", "Article 10"}

	tests := []struct {
		name    string
		defs    []Control
		wantErr bool
	}{
		{
			name: "valid set",
			defs: []Control{
				{ID: "CTRL-009-001", Article: "Article 9"},
				{ID: "CTRL-010-001", Article: "Article 10"},
			},
		},
		{
			name: "empty id",
			defs: []Control{
				{ID: "", Article: "Article 9"},
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			defs: []Control{
				{ID: "CTRL-009-001", Article: "Article 9"},
				{ID: "CTRL-009-001", Article: "Article 9"},
			},
			wantErr: true,
		},
		{
			name: "unknown article",
			defs: []Control{
				{ID: "CTRL-099-001", Article: "Article 99"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.defs, known)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry([]Control{
		{ID: "CTRL-009-001", Article: "Article 9", Title: "Risk"},
	}, []string{"Article 9"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	c, err := r.Get("CTRL-009-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Title != "Risk" {
		t.Errorf("Title = %q, want Risk", c.Title)
	}

	if _, err := r.Get("CTRL-404-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestRegistryListByArticleOrder(t *testing.T) {
	r, err := NewRegistry([]Control{
		{ID: "CTRL-009-002", Article: "Article 9"},
		{ID: "CTRL-010-001", Article: "Article 10"},
		{ID: "CTRL-009-001", Article: "Article 9"},
	}, []string{"Article 9", "Article 10"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got := r.ListByArticle("Article 9")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// insertion order, not lexicographic
	if got[0].ID != "CTRL-009-002" || got[1].ID != "CTRL-009-001" {
		t.Errorf("order = %s, %s; want CTRL-009-002, CTRL-009-001", got[0].ID, got[1].ID)
	}

	if got := r.ListByArticle("Article 11"); len(got) != 0 {
		t.Errorf("unknown article returned %d controls", len(got))
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	if r.Len() != len(Definitions) {
		t.Errorf("Len = %d, want %d", r.Len(), len(Definitions))
	}
	for _, ctrl := range r.All() {
		if len(ctrl.EvidenceSources) == 0 {
			t.Errorf("control %s declares no evidence sources", ctrl.ID)
		}
	}
}
