// File path: internal/docs/extract_test.go
package docs

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestExtractTextReadsTextFormats(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".txt", ".md", ".py", ".json"} {
		path := filepath.Join(dir, "file"+ext)
		if err := os.WriteFile(path, []byte("content of "+ext), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		text, err := ExtractText(path)
		if err != nil {
			t.Fatalf("ExtractText(%s) failed: %v", ext, err)
		}
		if text != "content of "+ext {
			t.Fatalf("ExtractText(%s) = %q", ext, text)
		}
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.zip")
	if err := os.WriteFile(path, []byte("zip"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ExtractText(path); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	if _, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestListFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{filepath.Join(dir, "a.txt"), filepath.Join(sub, "b.md")} {
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	sort.Strings(files)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.txt" || filepath.Base(files[1]) != "b.md" {
		t.Fatalf("unexpected listing: %v", files)
	}
}

func TestListFilesErrors(t *testing.T) {
	if _, err := ListFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ListFiles(file); err == nil {
		t.Fatal("expected error for non-directory path")
	}
}
