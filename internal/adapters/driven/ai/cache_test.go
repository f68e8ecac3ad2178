package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubEmbedder struct {
	calls int
	vec   []float32
	model string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int                            { return len(s.vec) }
func (s *stubEmbedder) BatchSize() int                              { return 16 }
func (s *stubEmbedder) Model() string                                { return s.model }
func (s *stubEmbedder) HealthCheck(ctx context.Context) error        { return nil }
func (s *stubEmbedder) Close() error                                 { return nil }

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachingEmbedderHitsUnderlyingOnceOnMiss(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{0.1, 0.2, 0.3}, model: "text-embedding-3-small"}
	client := newTestRedis(t)
	cached := NewCachingEmbedder(stub, client, time.Minute)

	ctx := context.Background()
	v1, err := cached.Embed(ctx, "hello world")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	v2, err := cached.Embed(ctx, "hello world")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if stub.calls != 1 {
		t.Errorf("expected 1 underlying call, got %d", stub.calls)
	}
	if len(v1) != len(v2) || v1[0] != v2[0] {
		t.Errorf("expected identical vectors from cache, got %v and %v", v1, v2)
	}
}

func TestCachingEmbedderEmbedBatchPartialHit(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{1, 2}, model: "m"}
	client := newTestRedis(t)
	cached := NewCachingEmbedder(stub, client, time.Minute)

	ctx := context.Background()
	if _, err := cached.Embed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	stub.calls = 0

	out, err := cached.EmbedBatch(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(out))
	}
	if stub.calls != 1 {
		t.Errorf("expected exactly 1 underlying batch call for the single miss, got %d", stub.calls)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{1.5, -2.25, 0, 3.125}
	got := decodeVector(encodeVector(vec))
	if len(got) != len(vec) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("index %d: got %v want %v", i, got[i], vec[i])
		}
	}
}
