package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

// Configuration implements driving.Configuration over a SettingsStore, with
// an in-memory snapshot refreshed by Reload and a LoadedAt version stamp
// (§4.9).
type Configuration struct {
	store  driven.SettingsStore
	logger *slog.Logger

	mu         sync.RWMutex
	providers  map[string]domain.ProviderSettings
	aiSettings domain.AiSettings
	loadedAt   time.Time

	seedOnce sync.Once
}

// NewConfiguration creates a Configuration and performs an initial load.
func NewConfiguration(store driven.SettingsStore, logger *slog.Logger) (*Configuration, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Configuration{store: store, logger: logger, providers: map[string]domain.ProviderSettings{}}
	if err := c.Reload(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

var _ driving.Configuration = (*Configuration)(nil)

func (c *Configuration) GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.providers[pair.String()]
	if !ok {
		return domain.ProviderSettings{}, false, nil
	}
	return s, true, nil
}

func (c *Configuration) ListEnabledProviders(ctx context.Context) ([]domain.ProviderSettings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.ProviderSettings
	for _, s := range c.providers {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Configuration) GetAiSettings(ctx context.Context) (domain.AiSettings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aiSettings, nil
}

// Reload re-reads the persistent settings tables (§4.9). Invalid provider
// settings blobs are dropped with a warning rather than failing the reload.
func (c *Configuration) Reload(ctx context.Context) error {
	all, err := c.store.ListProviderSettings(ctx)
	if err != nil {
		return fmt.Errorf("listing provider settings: %w", err)
	}

	providers := make(map[string]domain.ProviderSettings, len(all))
	for _, s := range all {
		if err := validateProviderSettings(s); err != nil {
			c.logger.Warn("dropping invalid provider settings", "provider_type", s.Pair.ProviderType, "provider_name", s.Pair.ProviderName, "error", err)
			continue
		}
		providers[s.Pair.String()] = s
	}

	aiSettings, err := c.store.GetAiSettings(ctx)
	if err != nil {
		aiSettings = domain.DefaultAiSettings()
	}

	c.mu.Lock()
	c.providers = providers
	c.aiSettings = aiSettings
	c.loadedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Configuration) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// SeedFromEnvironment seeds local provider settings from environment
// variables, once per process, if no row yet exists for it (§4.9
// "Seeding").
func (c *Configuration) SeedFromEnvironment(ctx context.Context) error {
	var seedErr error
	c.seedOnce.Do(func() {
		root := getEnv("RAGCORE_LOCAL_ROOT", "")
		if root == "" {
			return
		}
		pair := domain.ProviderPair{ProviderType: domain.ProviderTypeLocal, ProviderName: getEnv("RAGCORE_LOCAL_PROVIDER_NAME", "default")}
		if _, err := c.store.GetProviderSettings(ctx, pair); err == nil {
			return // already seeded
		}
		settings := domain.ProviderSettings{
			Pair:    pair,
			Enabled: getEnvBool("RAGCORE_LOCAL_ENABLED", true),
			Config:  map[string]any{"root": root},
		}
		if err := c.store.SaveProviderSettings(ctx, settings); err != nil {
			seedErr = fmt.Errorf("seeding local provider settings: %w", err)
			return
		}
		seedErr = c.Reload(ctx)
	})
	return seedErr
}

func validateProviderSettings(s domain.ProviderSettings) error {
	if s.Pair.ProviderType == "" || s.Pair.ProviderName == "" {
		return domain.ErrInvalidSettings
	}
	switch s.Pair.ProviderType {
	case domain.ProviderTypeLocal, domain.ProviderTypeS3, domain.ProviderTypeOneDrive:
	default:
		return fmt.Errorf("%w: unknown provider_type %q", domain.ErrInvalidSettings, s.Pair.ProviderType)
	}
	return nil
}

// getEnv reads an environment variable, defaulting to def when unset or
// blank, matching the donor's env-var config helper idiom.
func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

