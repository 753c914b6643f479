package scans

import (
	"os"
	"path/filepath"
	"sort"
)

// BundleFile is one extracted file's metadata
type BundleFile struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Bundle is the extracted file listing of one uploaded archive, owned by the
// scan that created it. Paths are slash-separated and relative to the bundle
// root.
type Bundle struct {
	Name   string
	SHA256 string

	root  string
	files []BundleFile
}

// NewBundle wraps an extracted directory. The file listing is sorted by path
// so scan rule matching is stable across bundles with reordered entries.
func NewBundle(name, sha string, root string, files []BundleFile) *Bundle {
	sorted := make([]BundleFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return &Bundle{Name: name, SHA256: sha, root: root, files: sorted}
}

// Files returns the listing in path order
func (b *Bundle) Files() []BundleFile {
	out := make([]BundleFile, len(b.files))
	copy(out, b.files)
	return out
}

// Root returns the extraction directory on disk
func (b *Bundle) Root() string {
	return b.root
}

// ReadFile reads one extracted file's content by relative path
func (b *Bundle) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(b.root, filepath.FromSlash(path)))
}

// Close removes the extracted files from disk
func (b *Bundle) Close() error {
	if b.root == "" {
		return nil
	}
	return os.RemoveAll(b.root)
}
