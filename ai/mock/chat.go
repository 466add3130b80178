package mock

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// GenerateContentFunc is called by GenerateContent if set.
	// If nil, the last human message is echoed back as the response.
	GenerateContentFunc func(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)

	callCount int
}

// NewMockChatModel creates a mock chat model with default echo behavior.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// GenerateContent produces a canned completion.
func (m *MockChatModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.callCount++

	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, messages, options...)
	}

	content := "ok"
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, part := range messages[i].Parts {
			if text, ok := part.(llms.TextContent); ok {
				content = text.Text
			}
		}
		break
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}, nil
}

// CallCount returns the number of times GenerateContent was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}
