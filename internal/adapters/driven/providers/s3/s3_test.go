package s3

import (
	"testing"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

func TestNewRejectsMissingEndpointOrBucket(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeS3, ProviderName: "bucket1"}

	if _, err := New(pair, Config{}); err != domain.ErrInvalidSettings {
		t.Errorf("expected ErrInvalidSettings for empty config, got %v", err)
	}
	if _, err := New(pair, Config{Endpoint: "localhost:9000"}); err != domain.ErrInvalidSettings {
		t.Errorf("expected ErrInvalidSettings for missing bucket, got %v", err)
	}
}

func TestNewSucceedsWithMinimalConfig(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeS3, ProviderName: "bucket1"}
	p, err := New(pair, Config{Endpoint: "localhost:9000", Bucket: "docs"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Type() != domain.ProviderTypeS3 {
		t.Errorf("Type() = %q", p.Type())
	}
}

func TestFactoryBuildUsesConfigMap(t *testing.T) {
	f := NewFactory()
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeS3, ProviderName: "bucket1"}

	p, err := f.Build(pair, map[string]any{
		"endpoint": "localhost:9000",
		"bucket":   "docs",
		"secure":   true,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if p.Type() != domain.ProviderTypeS3 {
		t.Errorf("Type() = %q", p.Type())
	}
}

func TestFactoryBuildRejectsMissingBucket(t *testing.T) {
	f := NewFactory()
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeS3, ProviderName: "bucket1"}

	_, err := f.Build(pair, map[string]any{"endpoint": "localhost:9000"})
	if err != domain.ErrInvalidSettings {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}
