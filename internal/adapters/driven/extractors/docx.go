package extractors

import (
	"context"
	"html"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCX extracts plain text from Word documents via nguyenthenguyen/docx.
// That library only reads from a path, so the byte stream is spooled to a
// temp file first; its Editable().GetContent() returns the document's raw
// paragraph XML, which is then stripped down to text.
type DOCX struct{}

// NewDOCX returns a ready-to-register DOCX extractor.
func NewDOCX() *DOCX {
	return &DOCX{}
}

func (d *DOCX) Extensions() []string {
	return []string{".docx"}
}

func (d *DOCX) ExtractText(ctx context.Context, r io.Reader, filename string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	tmp, err := os.CreateTemp("", "ragcore-docx-*.docx")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	reader, err := docx.ReadDocxFile(tmpPath)
	if err != nil {
		// Corrupted input yields ("", nil) per §4.2.
		return "", nil
	}
	defer reader.Close()

	content := reader.Editable().GetContent()
	return cleanDocxXML(ctx, content)
}

var (
	docxParaBreak = regexp.MustCompile(`</w:p>`)
	docxTag       = regexp.MustCompile(`<[^>]+>`)
)

// cleanDocxXML turns the raw paragraph-run XML the library hands back into
// plain text: one line per `<w:p>` paragraph, tags stripped. ctx is checked
// between paragraphs.
func cleanDocxXML(ctx context.Context, raw string) (string, error) {
	withBreaks := docxParaBreak.ReplaceAllString(raw, "</w:p>\n")
	stripped := docxTag.ReplaceAllString(withBreaks, "")

	lines := strings.Split(stripped, "\n")
	var kept []string
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line = strings.TrimSpace(html.UnescapeString(line))
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), nil
}
