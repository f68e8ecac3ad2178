package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}

func TestProviderEnumerateAndFetch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "b.md", "world")

	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeLocal, ProviderName: "docs"}
	p, err := New(pair, Config{Root: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	descs, err := p.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(descs))
	}

	for _, d := range descs {
		if d.Etag == "" {
			t.Error("expected non-empty etag")
		}
		r, err := p.Fetch(context.Background(), d.DocumentID)
		if err != nil {
			t.Fatalf("Fetch(%q) error: %v", d.DocumentID, err)
		}
		content, _ := io.ReadAll(r)
		r.Close()
		if len(content) == 0 {
			t.Errorf("expected non-empty content for %q", d.DocumentID)
		}
	}
}

func TestProviderFetchMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeLocal, ProviderName: "docs"}
	p, err := New(pair, Config{Root: dir})
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Fetch(context.Background(), "missing.txt")
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProviderEnumerateFiltersExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "keep")
	writeFile(t, dir, "a.bin", "drop")

	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeLocal, ProviderName: "docs"}
	p, err := New(pair, Config{Root: dir, Extensions: []string{".txt"}})
	if err != nil {
		t.Fatal(err)
	}

	descs, err := p.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}
	if len(descs) != 1 || descs[0].Filename != "a.txt" {
		t.Errorf("expected only a.txt, got %+v", descs)
	}
}

func TestNewRejectsEmptyRoot(t *testing.T) {
	_, err := New(domain.ProviderPair{}, Config{})
	if err != domain.ErrInvalidSettings {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}
