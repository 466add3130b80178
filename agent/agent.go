// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragdex/ai"
	"github.com/poiesic/ragdex/core"
	"github.com/poiesic/ragdex/retrieval"
	"github.com/poiesic/ragdex/storage"
	"github.com/tmc/langchaingo/llms"
)

const systemPrompt = "You are a helpful AI assistant with access to a document retrieval tool. " +
	"Use the tool to retrieve relevant context from indexed documents to help answer user queries. " +
	"Always cite the sources you use and provide accurate, contextual answers based on the retrieved information. " +
	"If you cannot find relevant information, acknowledge this to the user."

const retrieveToolName = "retrieve_context"

// maxToolRounds bounds the tool-call loop so a model that keeps asking for
// context cannot spin forever.
const maxToolRounds = 5

const defaultHistoryWindow = 20

// retrieveTool is the tool definition announced to the chat model.
var retrieveTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name: retrieveToolName,
		Description: "Retrieve relevant context from the document store to help answer a query. " +
			"Searches the vector database for documents similar to the query and returns the most relevant results.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query or question",
				},
			},
			"required": []string{"query"},
		},
	},
}

// StreamFunc receives chunks of the model's final answer as they arrive.
type StreamFunc func(ctx context.Context, chunk []byte) error

// Agent answers user queries with retrieval-augmented generation.
type Agent struct {
	chat          ai.ChatModel
	retriever     *retrieval.Retriever
	history       storage.HistoryRepository
	historyWindow int
	logger        *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithHistory attaches a repository that persists conversation turns and
// seeds each request with the session's recent history.
func WithHistory(repo storage.HistoryRepository) Option {
	return func(a *Agent) {
		a.history = repo
	}
}

// WithHistoryWindow bounds how many past turns are replayed to the model.
func WithHistoryWindow(turns int) Option {
	return func(a *Agent) {
		if turns > 0 {
			a.historyWindow = turns
		}
	}
}

// New creates a retrieval-augmented chat agent.
func New(chat ai.ChatModel, retriever *retrieval.Retriever, opts ...Option) *Agent {
	a := &Agent{
		chat:          chat,
		retriever:     retriever,
		historyWindow: defaultHistoryWindow,
		logger:        slog.Default().With("component", "agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers a user query against the session's active collection.
// When stream is non-nil, chunks of the answer are forwarded to it as the
// model produces them; the full answer is returned either way.
func (a *Agent) Ask(ctx context.Context, session *retrieval.Session, query string, stream StreamFunc) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
	}
	messages = append(messages, a.loadHistory(ctx, session)...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, query))

	callOpts := []llms.CallOption{llms.WithTools([]llms.Tool{retrieveTool})}
	if stream != nil {
		callOpts = append(callOpts, llms.WithStreamingFunc(stream))
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.chat.GenerateContent(ctx, messages, callOpts...)
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			a.persistTurns(ctx, session, query, choice.Content)
			return choice.Content, nil
		}

		messages = append(messages, toolCallMessage(choice.ToolCalls))
		for _, call := range choice.ToolCalls {
			messages = append(messages, a.runTool(ctx, session, call))
		}
	}

	return "", ErrToolLoopExceeded
}

// runTool executes one tool call and wraps the result as a tool response
// message. Tool failures become response text rather than errors, so the
// model can acknowledge the failure to the user.
func (a *Agent) runTool(ctx context.Context, session *retrieval.Session, call llms.ToolCall) llms.MessageContent {
	content := a.retrieve(ctx, session, call)
	return llms.MessageContent{
		Role: llms.ChatMessageTypeTool,
		Parts: []llms.ContentPart{
			llms.ToolCallResponse{
				ToolCallID: call.ID,
				Name:       call.FunctionCall.Name,
				Content:    content,
			},
		},
	}
}

func (a *Agent) retrieve(ctx context.Context, session *retrieval.Session, call llms.ToolCall) string {
	if call.FunctionCall.Name != retrieveToolName {
		a.logger.Warn("model requested unknown tool", "tool", call.FunctionCall.Name)
		return fmt.Sprintf("Unknown tool: %s", call.FunctionCall.Name)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
		a.logger.Warn("malformed tool arguments", "err", err)
		return fmt.Sprintf("Error retrieving context: malformed arguments: %v", err)
	}

	text, docs, err := a.retriever.Retrieve(ctx, session, args.Query)
	if err != nil {
		a.logger.Error("retrieval failed", "err", err)
		return fmt.Sprintf("Error retrieving context: %v", err)
	}

	a.logger.Info("tool call served", "query", args.Query, "documents", len(docs))
	return text
}

// loadHistory replays the session's recent turns in chronological order.
func (a *Agent) loadHistory(ctx context.Context, session *retrieval.Session) []llms.MessageContent {
	if a.history == nil {
		return nil
	}

	turns, err := a.history.GetRecentTurns(ctx, session.ID(), a.historyWindow)
	if err != nil {
		a.logger.Warn("failed to load history, continuing without it", "session", session.ID(), "err", err)
		return nil
	}

	// Recent turns arrive newest first.
	messages := make([]llms.MessageContent, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		role := llms.ChatMessageTypeHuman
		if turns[i].Role == core.RoleAI {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turns[i].Contents))
	}
	return messages
}

// persistTurns records the exchange. Persistence failures are logged, not
// surfaced: the user already has the answer.
func (a *Agent) persistTurns(ctx context.Context, session *retrieval.Session, query, answer string) {
	if a.history == nil || answer == "" {
		return
	}

	_, err := a.history.AddTurns(ctx,
		&core.ChatTurn{SessionID: session.ID(), Role: core.RoleHuman, Contents: query},
		&core.ChatTurn{SessionID: session.ID(), Role: core.RoleAI, Contents: answer},
	)
	if err != nil {
		a.logger.Warn("failed to persist turns", "session", session.ID(), "err", err)
	}
}

// toolCallMessage replays the model's tool requests into the transcript.
func toolCallMessage(calls []llms.ToolCall) llms.MessageContent {
	parts := make([]llms.ContentPart, len(calls))
	for i, call := range calls {
		parts[i] = call
	}
	return llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts}
}
