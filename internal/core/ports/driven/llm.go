package driven

import "context"

// ChatMessage is one turn passed to CompletionService.Complete: role is
// "system", "user", or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionOptions tunes one completion call.
type CompletionOptions struct {
	// Model overrides the default completion model for this call — used to
	// route ChatPipeline's refine/rephrase/evaluate steps to the small
	// model and GenerateAnswer to the large model.
	Model string

	// JSONMode requests a strict-JSON response, used by
	// EvaluateAnswerability.
	JSONMode bool

	MaxTokens int
}

// CompletionService drives the remote chat/completion model used to
// synthesize answers, refine queries, and evaluate answerability.
type CompletionService interface {
	// Complete issues one completion call and returns the model's text
	// plus the token count it reports.
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (text string, tokensUsed int, err error)

	// Model returns the default completion model name.
	Model() string

	// Ping verifies the completion service is available.
	Ping(ctx context.Context) error

	// Close releases resources held by the completion service.
	Close() error
}
