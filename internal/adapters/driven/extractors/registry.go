package extractors

import (
	"strings"
	"sync"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// Registry dispatches by lowercased file extension to the first Extractor
// registered for it. A mutex-guarded map from extension to Extractor, with
// no priority-tier sort: §4.2 specifies strict first-registered-wins
// dispatch.
type Registry struct {
	mu  sync.RWMutex
	byExt map[string]driven.Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.Extractor)}
}

// DefaultRegistry returns a registry pre-populated with the built-in
// plaintext and DOCX extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".docx", NewDOCX())
	plain := NewPlaintext()
	for _, ext := range plain.Extensions() {
		r.Register(ext, plain)
	}
	return r
}

func (r *Registry) Register(ext string, e driven.Extractor) {
	ext = strings.ToLower(ext)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, claimed := r.byExt[ext]; claimed {
		return
	}
	r.byExt[ext] = e
}

func (r *Registry) For(filename string) (driven.Extractor, error) {
	ext := strings.ToLower(extOf(filename))
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byExt[ext]
	if !ok {
		return nil, domain.ErrUnsupported
	}
	return e, nil
}

func extOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return filename[i:]
}
