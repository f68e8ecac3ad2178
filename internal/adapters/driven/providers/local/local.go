// Package local implements a Provider over a directory on the local
// filesystem.
package local

import (
	"context"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// Config configures a Provider instance bound to one provider pair.
type Config struct {
	Root string
	// Extensions, when non-empty, restricts enumeration to these
	// lowercased extensions (with leading dot). Empty means no filter.
	Extensions []string
}

// DefaultConfig returns a zero-value Config; Root must still be set.
func DefaultConfig() Config {
	return Config{}
}

// Provider walks a root directory and presents each regular file as a
// document. document_id is the slash-normalized path relative to Root;
// etag is a blake2b-256 hash of the path, mtime, and size so any of those
// changing is detected as a content change (I3).
type Provider struct {
	pair domain.ProviderPair
	cfg  Config
}

// New constructs a local Provider bound to pair.
func New(pair domain.ProviderPair, cfg Config) (*Provider, error) {
	if cfg.Root == "" {
		return nil, domain.ErrInvalidSettings
	}
	return &Provider{pair: pair, cfg: cfg}, nil
}

func (p *Provider) Type() string { return domain.ProviderTypeLocal }

func (p *Provider) Enumerate(ctx context.Context) ([]domain.DocumentDescriptor, error) {
	var out []domain.DocumentDescriptor

	err := filepath.WalkDir(p.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !p.matchesExtension(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(p.cfg.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		out = append(out, domain.DocumentDescriptor{
			Pair:         p.pair,
			DocumentID:   rel,
			Filename:     filepath.Base(path),
			RelativePath: rel,
			Etag:         computeEtag(rel, info),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) matchesExtension(path string) bool {
	if len(p.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range p.cfg.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (p *Provider) Fetch(ctx context.Context, documentID string) (io.ReadCloser, error) {
	full := filepath.Join(p.cfg.Root, filepath.FromSlash(documentID))
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (p *Provider) Describe(ctx context.Context) (map[string]any, error) {
	return map[string]any{
		"root": p.cfg.Root,
	}, nil
}

func computeEtag(relPath string, info fs.FileInfo) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(relPath))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Factory builds local Providers from a provider_settings config map.
type Factory struct{}

// NewFactory returns a ready-to-register Factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Type() string { return domain.ProviderTypeLocal }

func (f *Factory) Build(pair domain.ProviderPair, config map[string]any) (driven.Provider, error) {
	root, _ := config["root"].(string)
	if root == "" {
		return nil, domain.ErrInvalidSettings
	}
	cfg := Config{Root: root}
	if raw, ok := config["extensions"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				cfg.Extensions = append(cfg.Extensions, strings.ToLower(s))
			}
		}
	}
	return New(pair, cfg)
}
