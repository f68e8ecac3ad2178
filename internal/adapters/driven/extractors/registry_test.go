package extractors

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

type stubExtractor struct {
	ext  string
	text string
}

func (s *stubExtractor) Extensions() []string { return []string{s.ext} }

func (s *stubExtractor) ExtractText(ctx context.Context, r io.Reader, filename string) (string, error) {
	return s.text, nil
}

func TestRegistryFirstRegisteredWins(t *testing.T) {
	r := NewRegistry()
	first := &stubExtractor{ext: ".txt", text: "first"}
	second := &stubExtractor{ext: ".txt", text: "second"}

	r.Register(".txt", first)
	r.Register(".txt", second)

	got, err := r.For("notes.txt")
	if err != nil {
		t.Fatalf("For() error: %v", err)
	}
	text, _ := got.ExtractText(context.Background(), strings.NewReader(""), "notes.txt")
	if text != "first" {
		t.Errorf("expected the first-registered extractor to win, got text %q", text)
	}
}

func TestRegistryUnsupportedExtension(t *testing.T) {
	r := NewRegistry()
	_, err := r.For("archive.zip")
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestRegistryCaseInsensitiveDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register(".md", &stubExtractor{ext: ".md", text: "md"})

	_, err := r.For("README.MD")
	if err != nil {
		t.Errorf("expected case-insensitive match, got error %v", err)
	}
}

func TestDefaultRegistryClaimsKnownExtensions(t *testing.T) {
	r := DefaultRegistry()
	for _, ext := range []string{".txt", ".md", ".csv", ".json", ".docx"} {
		if _, err := r.For("file" + ext); err != nil {
			t.Errorf("DefaultRegistry should claim %q, got error %v", ext, err)
		}
	}
}

func TestPlaintextExtractTextStripsBOM(t *testing.T) {
	p := NewPlaintext()
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello\nworld")...)

	text, err := p.ExtractText(context.Background(), strings.NewReader(string(input)), "a.txt")
	if err != nil {
		t.Fatalf("ExtractText() error: %v", err)
	}
	if text != "hello\nworld" {
		t.Errorf("ExtractText() = %q, want %q", text, "hello\nworld")
	}
}

func TestPlaintextExtractTextHonorsCancellation(t *testing.T) {
	p := NewPlaintext()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ExtractText(ctx, strings.NewReader("one\ntwo\nthree"), "a.txt")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
