package bundle

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

// ZipExtractor implements the Extractor port over zip archives. Any failure
// to open or unpack the archive is a caller-supplied-data problem and wraps
// ErrCorruptArtifact.
type ZipExtractor struct {
	// TempDir overrides the extraction parent directory; defaults to os.TempDir()
	TempDir string
}

func (z *ZipExtractor) Extract(ctx context.Context, name, archivePath string) (*domain.Bundle, error) {
	archiveSum, err := fileSHA256(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArtifact, err)
	}

	rd, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArtifact, err)
	}
	defer rd.Close()

	// Collect entry paths up front. Uploads often nest everything under one
	// top-level directory; strip that prefix so rule patterns stay
	// root-relative.
	var names []string
	for _, f := range rd.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rel := filepath.ToSlash(f.Name)
		if strings.Contains(rel, "..") || strings.HasPrefix(rel, "/") {
			return nil, fmt.Errorf("%w: unsafe path %q", domain.ErrCorruptArtifact, f.Name)
		}
		names = append(names, rel)
	}
	prefix := commonRoot(names)

	root, err := os.MkdirTemp(z.TempDir, "bundle-")
	if err != nil {
		return nil, err
	}

	var files []domain.BundleFile
	for _, f := range rd.File {
		if err := ctx.Err(); err != nil {
			os.RemoveAll(root)
			return nil, err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rel := strings.TrimPrefix(filepath.ToSlash(f.Name), prefix)
		sum, size, err := writeEntry(root, rel, f)
		if err != nil {
			os.RemoveAll(root)
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArtifact, err)
		}
		files = append(files, domain.BundleFile{Path: rel, Size: size, SHA256: sum})
	}

	return domain.NewBundle(name, archiveSum, root, files), nil
}

func writeEntry(root, rel string, f *zip.File) (string, int64, error) {
	src, err := f.Open()
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	dest := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", 0, err
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", 0, err
	}
	defer out.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), src)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// commonRoot returns the single shared "dir/" prefix of every path, or ""
func commonRoot(names []string) string {
	if len(names) == 0 {
		return ""
	}
	i := strings.IndexByte(names[0], '/')
	if i < 0 {
		return ""
	}
	prefix := names[0][:i+1]
	for _, n := range names {
		if !strings.HasPrefix(n, prefix) {
			return ""
		}
	}
	return prefix
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
