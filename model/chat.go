// Package model provides LLM provider adapters behind small chat and
// embedding interfaces.
package model

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem sets context and behavior for the model.
	RoleSystem Role = "system"
	// RoleUser is input from the caller.
	RoleUser Role = "user"
	// RoleAssistant is a prior model response.
	RoleAssistant Role = "assistant"
)

// Message is a single message in an LLM conversation.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is the input for one chat completion.
type ChatRequest struct {
	// Messages is the conversation so far (system, user, assistant).
	Messages []Message

	// Temperature overrides the provider default when > 0.
	Temperature float64
}

// ChatOut is the model response for one chat completion.
type ChatOut struct {
	// Text is the generated completion text.
	Text string
}

// ChatModel is the interface for LLM chat providers.
//
// Implementations handle provider-specific authentication and message
// format conversion, and should respect context cancellation. Errors are
// returned as-is so callers can decide whether to retry or degrade.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (ChatOut, error)
}

// Embedder is the interface for text embedding providers.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
