package mocks

import (
	"context"
	"strings"

	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// MockCompletionService is a mock implementation of driven.CompletionService.
type MockCompletionService struct {
	CompleteFn func(ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions) (string, int, error)
	model      string
}

func NewMockCompletionService() *MockCompletionService {
	return &MockCompletionService{model: "mock-completion-model"}
}

func (m *MockCompletionService) Complete(ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions) (string, int, error) {
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, messages, opts)
	}
	var last string
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	return "mock answer for: " + strings.TrimSpace(last), len(last) / 4, nil
}

func (m *MockCompletionService) Model() string                  { return m.model }
func (m *MockCompletionService) Ping(ctx context.Context) error { return nil }
func (m *MockCompletionService) Close() error                   { return nil }

// SetModel overrides the reported model name, for tests asserting on it.
func (m *MockCompletionService) SetModel(model string) { m.model = model }
