package driving

import (
	"context"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// QueryPipeline answers a single standalone question: embed -> k-NN search
// -> compose prompt with numbered citations -> completion (§4.7).
type QueryPipeline interface {
	Answer(ctx context.Context, req domain.QueryRequest) (domain.QueryResponse, error)
}
