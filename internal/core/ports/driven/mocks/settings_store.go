package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// MockSettingsStore is an in-memory implementation of driven.SettingsStore.
type MockSettingsStore struct {
	mu         sync.RWMutex
	providers  map[string]domain.ProviderSettings
	aiSettings domain.AiSettings
}

func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{
		providers:  make(map[string]domain.ProviderSettings),
		aiSettings: domain.DefaultAiSettings(),
	}
}

func (m *MockSettingsStore) GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.providers[pair.String()]
	if !ok {
		return domain.ProviderSettings{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *MockSettingsStore) ListProviderSettings(ctx context.Context) ([]domain.ProviderSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProviderSettings, 0, len(m.providers))
	for _, s := range m.providers {
		out = append(out, s)
	}
	return out, nil
}

func (m *MockSettingsStore) SaveProviderSettings(ctx context.Context, s domain.ProviderSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[s.Pair.String()] = s
	return nil
}

func (m *MockSettingsStore) DeleteProviderSettings(ctx context.Context, pair domain.ProviderPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.providers, pair.String())
	return nil
}

func (m *MockSettingsStore) GetAiSettings(ctx context.Context) (domain.AiSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.aiSettings, nil
}

func (m *MockSettingsStore) SaveAiSettings(ctx context.Context, s domain.AiSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.aiSettings = s
	return nil
}

// MockProviderRegistryStore is an in-memory implementation of
// driven.ProviderRegistryStore.
type MockProviderRegistryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.ProviderRegistryEntry
}

func NewMockProviderRegistryStore() *MockProviderRegistryStore {
	return &MockProviderRegistryStore{entries: make(map[string]domain.ProviderRegistryEntry)}
}

func (m *MockProviderRegistryStore) Upsert(ctx context.Context, entry domain.ProviderRegistryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.entries[entry.Pair.String()]; ok {
		entry.RegisteredAt = prev.RegisteredAt
	} else if entry.RegisteredAt.IsZero() {
		entry.RegisteredAt = time.Now()
	}
	m.entries[entry.Pair.String()] = entry
	return nil
}

func (m *MockProviderRegistryStore) StampLastSync(ctx context.Context, pair domain.ProviderPair, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[pair.String()]
	if !ok {
		return domain.ErrNotFound
	}
	e.LastSyncAt = when
	m.entries[pair.String()] = e
	return nil
}

func (m *MockProviderRegistryStore) ListEnabled(ctx context.Context) ([]domain.ProviderRegistryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ProviderRegistryEntry
	for _, e := range m.entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockProviderRegistryStore) List(ctx context.Context) ([]domain.ProviderRegistryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProviderRegistryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *MockProviderRegistryStore) Delete(ctx context.Context, pair domain.ProviderPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, pair.String())
	return nil
}
