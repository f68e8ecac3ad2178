package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// CachingEmbedder decorates an Embedder with a Redis-backed cache keyed by
// sha256(model + "\n" + text), implementing the embedding cache
// supplemented in SPEC_FULL.md §2.3. A cache miss or a Redis error falls
// through to the wrapped Embedder transparently — the cache is strictly an
// optimization, never a correctness dependency.
type CachingEmbedder struct {
	driven.Embedder
	redis *redis.Client
	ttl   time.Duration
}

// NewCachingEmbedder wraps next with a Redis cache. ttl <= 0 means entries
// never expire.
func NewCachingEmbedder(next driven.Embedder, client *redis.Client, ttl time.Duration) *CachingEmbedder {
	return &CachingEmbedder{Embedder: next, redis: client, ttl: ttl}
}

func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	if vec, ok := c.get(ctx, key); ok {
		return vec, nil
	}

	vec, err := c.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, vec)
	return vec, nil
}

func (c *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		key := c.cacheKey(t)
		if vec, ok := c.get(ctx, key); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.Embedder.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		out[idx] = fresh[j]
		c.set(ctx, c.cacheKey(texts[idx]), fresh[j])
	}
	return out, nil
}

func (c *CachingEmbedder) cacheKey(text string) string {
	h := sha256.New()
	h.Write([]byte(c.Embedder.Model()))
	h.Write([]byte("\n"))
	h.Write([]byte(text))
	return "ragcore:embedding:" + hex.EncodeToString(h.Sum(nil))
}

func (c *CachingEmbedder) get(ctx context.Context, key string) ([]float32, bool) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return decodeVector(raw), true
}

func (c *CachingEmbedder) set(ctx context.Context, key string, vec []float32) {
	c.redis.Set(ctx, key, encodeVector(vec), c.ttl)
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
