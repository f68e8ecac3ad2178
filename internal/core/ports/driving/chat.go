package driving

import (
	"context"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// ChatStepSink receives progress events during a streaming ChatPipeline
// run. Emit is called once per step, in order, before Answer returns the
// final response.
type ChatStepSink interface {
	Emit(step domain.ChatStep)
}

// ChatPipeline runs multi-turn RAG with conversation history, query
// refinement, and a bounded (at most two attempts) retrieve/evaluate/retry
// loop (§4.8).
type ChatPipeline interface {
	// Answer runs the full pipeline and returns the complete response. If
	// req.StreamSteps is true and sink is non-nil, Emit is called for each
	// intermediate step as it happens; the returned ChatResponse still
	// carries the full step transcript either way.
	Answer(ctx context.Context, req domain.ChatRequest, sink ChatStepSink) (domain.ChatResponse, error)
}
