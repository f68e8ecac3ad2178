package domain

import "testing"

func TestProviderTypeConstants(t *testing.T) {
	if ProviderTypeLocal != "local" {
		t.Errorf("ProviderTypeLocal = %q", ProviderTypeLocal)
	}
	if ProviderTypeS3 != "s3" {
		t.Errorf("ProviderTypeS3 = %q", ProviderTypeS3)
	}
	if ProviderTypeOneDrive != "onedrive" {
		t.Errorf("ProviderTypeOneDrive = %q", ProviderTypeOneDrive)
	}
}

func TestDefaultAiSettings(t *testing.T) {
	s := DefaultAiSettings()

	if s.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q", s.EmbeddingModel)
	}
	if s.EmbeddingDimension != 1536 {
		t.Errorf("EmbeddingDimension = %d, want 1536", s.EmbeddingDimension)
	}
	if s.CompletionModel != "gpt-4o-mini" {
		t.Errorf("CompletionModel = %q", s.CompletionModel)
	}
	if s.SmallModel != "gpt-4o-mini" {
		t.Errorf("SmallModel = %q", s.SmallModel)
	}
	if s.MaxTopK != 20 {
		t.Errorf("MaxTopK = %d, want 20", s.MaxTopK)
	}
	if s.BatchSize != 16 {
		t.Errorf("BatchSize = %d, want 16", s.BatchSize)
	}
}

func TestProviderSettingsZeroValue(t *testing.T) {
	var ps ProviderSettings
	if ps.Enabled {
		t.Error("zero-value ProviderSettings should not be enabled")
	}
	if ps.Config != nil {
		t.Error("zero-value ProviderSettings.Config should be nil")
	}
}

func TestProviderRegistryEntryPair(t *testing.T) {
	e := ProviderRegistryEntry{
		Pair:    ProviderPair{ProviderType: ProviderTypeLocal, ProviderName: "docs"},
		Enabled: true,
	}
	if e.Pair.String() != "local/docs" {
		t.Errorf("Pair.String() = %q", e.Pair.String())
	}
}
