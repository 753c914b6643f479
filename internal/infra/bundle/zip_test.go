package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	p := filepath.Join(t.TempDir(), "bundle.zip")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return p
}

func TestExtract(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"README.md":   "# project",
		"src/main.py": "print('hi')",
	})

	ex := &ZipExtractor{TempDir: t.TempDir()}
	b, err := ex.Extract(context.Background(), "bundle.zip", archive)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer b.Close()

	files := b.Files()
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	// listing is sorted by path
	if files[0].Path != "README.md" || files[1].Path != "src/main.py" {
		t.Errorf("paths = %s, %s", files[0].Path, files[1].Path)
	}

	want := sha256.Sum256([]byte("# project"))
	if files[0].SHA256 != hex.EncodeToString(want[:]) {
		t.Errorf("SHA256 = %s, want content hash", files[0].SHA256)
	}
	if files[0].Size != int64(len("# project")) {
		t.Errorf("Size = %d", files[0].Size)
	}

	got, err := b.ReadFile("src/main.py")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "print('hi')" {
		t.Errorf("content = %q", got)
	}
}

func TestExtractStripsSingleRootDir(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"myproject-1.0/README.md":        "# project",
		"myproject-1.0/tests/test_a.py":  "pass",
		"myproject-1.0/docs/risk_log.md": "risks",
	})

	ex := &ZipExtractor{TempDir: t.TempDir()}
	b, err := ex.Extract(context.Background(), "bundle.zip", archive)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer b.Close()

	for _, f := range b.Files() {
		if filepath.IsAbs(f.Path) || f.Path[0] == '/' {
			t.Errorf("absolute path leaked: %s", f.Path)
		}
		if len(f.Path) > len("myproject-1.0/") && f.Path[:len("myproject-1.0/")] == "myproject-1.0/" {
			t.Errorf("root prefix not stripped: %s", f.Path)
		}
	}
	if _, err := b.ReadFile("README.md"); err != nil {
		t.Errorf("ReadFile(README.md) after strip: %v", err)
	}
}

func TestExtractKeepsMixedRoots(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"a/x.txt": "1",
		"b/y.txt": "2",
	})

	ex := &ZipExtractor{TempDir: t.TempDir()}
	b, err := ex.Extract(context.Background(), "bundle.zip", archive)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer b.Close()

	files := b.Files()
	if files[0].Path != "a/x.txt" || files[1].Path != "b/y.txt" {
		t.Errorf("paths = %s, %s, want roots preserved", files[0].Path, files[1].Path)
	}
}

func TestExtractNotAZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "garbage.zip")
	if err := os.WriteFile(p, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ex := &ZipExtractor{TempDir: t.TempDir()}
	if _, err := ex.Extract(context.Background(), "garbage.zip", p); !errors.Is(err, domain.ErrCorruptArtifact) {
		t.Errorf("err = %v, want ErrCorruptArtifact", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	ex := &ZipExtractor{TempDir: t.TempDir()}
	if _, err := ex.Extract(context.Background(), "x.zip", filepath.Join(t.TempDir(), "nope.zip")); !errors.Is(err, domain.ErrCorruptArtifact) {
		t.Errorf("err = %v, want ErrCorruptArtifact", err)
	}
}

func TestExtractRejectsUnsafePaths(t *testing.T) {
	for _, name := range []string{"../escape.txt", "dir/../../escape.txt"} {
		t.Run(name, func(t *testing.T) {
			archive := writeZip(t, map[string]string{name: "evil"})
			ex := &ZipExtractor{TempDir: t.TempDir()}
			if _, err := ex.Extract(context.Background(), "bundle.zip", archive); !errors.Is(err, domain.ErrCorruptArtifact) {
				t.Errorf("err = %v, want ErrCorruptArtifact", err)
			}
		})
	}
}

func TestExtractCancelledContext(t *testing.T) {
	archive := writeZip(t, map[string]string{"a.txt": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &ZipExtractor{TempDir: t.TempDir()}
	if _, err := ex.Extract(ctx, "bundle.zip", archive); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCloseRemovesExtractionDir(t *testing.T) {
	archive := writeZip(t, map[string]string{"a.txt": "1"})
	ex := &ZipExtractor{TempDir: t.TempDir()}
	b, err := ex.Extract(context.Background(), "bundle.zip", archive)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	root := b.Root()
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("extraction dir still present: %v", err)
	}
}
