// Package s3 implements a Provider over an S3-compatible object store via
// the MinIO client.
package s3

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// Config configures a Provider instance bound to one provider pair.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Secure    bool
}

// Provider enumerates and fetches objects in one bucket (optionally under a
// key prefix) through a MinIO client. document_id is the object key; etag
// is the store's native ETag with surrounding quotes stripped.
type Provider struct {
	pair   domain.ProviderPair
	cfg    Config
	client *minio.Client
}

// New constructs an s3 Provider bound to pair.
func New(pair domain.ProviderPair, cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, domain.ErrInvalidSettings
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{pair: pair, cfg: cfg, client: client}, nil
}

func (p *Provider) Type() string { return domain.ProviderTypeS3 }

func (p *Provider) Enumerate(ctx context.Context) ([]domain.DocumentDescriptor, error) {
	var out []domain.DocumentDescriptor

	opts := minio.ListObjectsOptions{Prefix: p.cfg.Prefix, Recursive: true}
	for obj := range p.client.ListObjects(ctx, p.cfg.Bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}

		parts := strings.Split(obj.Key, "/")
		filename := parts[len(parts)-1]

		out = append(out, domain.DocumentDescriptor{
			Pair:         p.pair,
			DocumentID:   obj.Key,
			Filename:     filename,
			RelativePath: obj.Key,
			Etag:         strings.Trim(obj.ETag, `"`),
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func (p *Provider) Fetch(ctx context.Context, documentID string) (io.ReadCloser, error) {
	obj, err := p.client.GetObject(ctx, p.cfg.Bucket, documentID, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return obj, nil
}

func (p *Provider) Describe(ctx context.Context) (map[string]any, error) {
	return map[string]any{
		"endpoint": p.cfg.Endpoint,
		"bucket":   p.cfg.Bucket,
		"prefix":   p.cfg.Prefix,
	}, nil
}

// Factory builds s3 Providers from a provider_settings config map.
type Factory struct{}

// NewFactory returns a ready-to-register Factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Type() string { return domain.ProviderTypeS3 }

func (f *Factory) Build(pair domain.ProviderPair, config map[string]any) (driven.Provider, error) {
	cfg := Config{
		Endpoint:  stringField(config, "endpoint"),
		AccessKey: stringField(config, "access_key"),
		SecretKey: stringField(config, "secret_key"),
		Bucket:    stringField(config, "bucket"),
		Prefix:    stringField(config, "prefix"),
	}
	if v, ok := config["secure"].(bool); ok {
		cfg.Secure = v
	}
	return New(pair, cfg)
}

func stringField(config map[string]any, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}
