// Package onedrive implements a Provider over Microsoft Graph's OneDrive
// API, authenticating via OAuth2 client credentials.
package onedrive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Config configures a Provider instance bound to one provider pair.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// RootPath, when set, lists that folder (a path under the drive root)
	// instead of the drive root itself.
	RootPath string
}

// Provider lists the files of one OneDrive folder (the drive root, or
// RootPath) through the Microsoft Graph API, following page links.
// Subfolders are skipped, not descended into. document_id is the Graph item
// id; etag is the item's cTag, which changes on both content and metadata
// edits.
type Provider struct {
	pair   domain.ProviderPair
	cfg    Config
	client *http.Client
}

// New constructs a OneDrive Provider bound to pair, obtaining an
// http.Client whose requests are authenticated via a client-credentials
// OAuth2 token source.
func New(pair domain.ProviderPair, cfg Config) (*Provider, error) {
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, domain.ErrInvalidSettings
	}

	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     "https://login.microsoftonline.com/" + cfg.TenantID + "/oauth2/v2.0/token",
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	return &Provider{
		pair:   pair,
		cfg:    cfg,
		client: oauthCfg.Client(context.Background()),
	}, nil
}

func (p *Provider) Type() string { return domain.ProviderTypeOneDrive }

type driveItem struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ETag                 string `json:"eTag"`
	CTag                 string `json:"cTag"`
	LastModifiedDateTime string `json:"lastModifiedDateTime"`
	Folder               *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	File *struct{} `json:"file"`
}

type driveItemPage struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

func (p *Provider) Enumerate(ctx context.Context) ([]domain.DocumentDescriptor, error) {
	url := graphBaseURL + "/me/drive/root/children"
	if p.cfg.RootPath != "" {
		url = graphBaseURL + "/me/drive/root:/" + strings.TrimPrefix(p.cfg.RootPath, "/") + ":/children"
	}

	var out []domain.DocumentDescriptor
	for url != "" {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		page, err := p.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Value {
			if item.File == nil {
				continue
			}
			modified, _ := time.Parse(time.RFC3339, item.LastModifiedDateTime)
			out = append(out, domain.DocumentDescriptor{
				Pair:         p.pair,
				DocumentID:   item.ID,
				Filename:     item.Name,
				RelativePath: item.Name,
				Etag:         item.CTag,
				LastModified: modified,
			})
		}
		url = page.NextLink
	}
	return out, nil
}

func (p *Provider) fetchPage(ctx context.Context, url string) (*driveItemPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrServiceUnavailable
	}

	var page driveItemPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (p *Provider) Fetch(ctx context.Context, documentID string) (io.ReadCloser, error) {
	url := graphBaseURL + "/me/drive/items/" + documentID + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, domain.ErrServiceUnavailable
	}
	return resp.Body, nil
}

func (p *Provider) Describe(ctx context.Context) (map[string]any, error) {
	return map[string]any{
		"tenant_id": p.cfg.TenantID,
		"root_path": p.cfg.RootPath,
	}, nil
}

// Factory builds OneDrive Providers from a provider_settings config map.
type Factory struct{}

// NewFactory returns a ready-to-register Factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Type() string { return domain.ProviderTypeOneDrive }

func (f *Factory) Build(pair domain.ProviderPair, config map[string]any) (driven.Provider, error) {
	cfg := Config{
		TenantID:     stringField(config, "tenant_id"),
		ClientID:     stringField(config, "client_id"),
		ClientSecret: stringField(config, "client_secret"),
		RootPath:     stringField(config, "root_path"),
	}
	return New(pair, cfg)
}

func stringField(config map[string]any, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}
