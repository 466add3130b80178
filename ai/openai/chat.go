package openai

import (
	"github.com/poiesic/ragdex/ai"
	"github.com/tmc/langchaingo/llms/openai"
)

// newChatModel creates a langchaingo chat model for an OpenAI-compatible API.
// The returned model supports tool calling and streaming via call options.
func newChatModel(config *ai.Config) (*openai.LLM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ChatModel),
	)
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}
