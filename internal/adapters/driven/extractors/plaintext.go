package extractors

import (
	"bytes"
	"context"
	"io"
)

var plaintextExtensions = []string{
	".txt", ".md", ".csv", ".log", ".json", ".xml", ".yaml", ".yml", ".sql", ".sh", ".bat",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Plaintext extracts verbatim UTF-8 text from the plain-text family of
// extensions, stripping a leading BOM if present. It does no cleanup beyond
// that — spec.md §4.2 requires passthrough, not normalisation.
type Plaintext struct{}

// NewPlaintext returns a ready-to-register Plaintext extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

func (p *Plaintext) Extensions() []string {
	out := make([]string, len(plaintextExtensions))
	copy(out, plaintextExtensions)
	return out
}

func (p *Plaintext) ExtractText(ctx context.Context, r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	return string(raw), nil
}
