package onedrive

import (
	"testing"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

func TestNewRejectsIncompleteCredentials(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeOneDrive, ProviderName: "corp"}

	if _, err := New(pair, Config{}); err != domain.ErrInvalidSettings {
		t.Errorf("expected ErrInvalidSettings for empty config, got %v", err)
	}
	if _, err := New(pair, Config{TenantID: "t", ClientID: "c"}); err != domain.ErrInvalidSettings {
		t.Errorf("expected ErrInvalidSettings for missing secret, got %v", err)
	}
}

func TestNewSucceedsWithFullCredentials(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeOneDrive, ProviderName: "corp"}
	p, err := New(pair, Config{TenantID: "t", ClientID: "c", ClientSecret: "s"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Type() != domain.ProviderTypeOneDrive {
		t.Errorf("Type() = %q", p.Type())
	}
}

func TestFactoryBuild(t *testing.T) {
	f := NewFactory()
	pair := domain.ProviderPair{ProviderType: domain.ProviderTypeOneDrive, ProviderName: "corp"}

	p, err := f.Build(pair, map[string]any{
		"tenant_id":     "t",
		"client_id":     "c",
		"client_secret": "s",
		"root_path":     "/Documents",
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if p.Type() != domain.ProviderTypeOneDrive {
		t.Errorf("Type() = %q", p.Type())
	}
}
