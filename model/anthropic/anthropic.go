// Package anthropic provides a ChatModel adapter for Anthropic's Claude
// API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/blogsmith/model"
)

const (
	defaultChatModel = "claude-3-5-haiku-latest"
	maxTokens        = 4096
)

// ChatModel implements model.ChatModel for Anthropic's Messages API.
// Anthropic has no embeddings endpoint, so this package provides chat
// only; pair it with another provider's Embedder.
type ChatModel struct {
	apiKey    string
	modelName string
}

// NewChatModel creates an Anthropic ChatModel. An empty modelName selects
// claude-3-5-haiku-latest.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = defaultChatModel
	}
	return &ChatModel{apiKey: apiKey, modelName: modelName}
}

// Chat implements the model.ChatModel interface.
//
// Anthropic expects the system prompt as a separate parameter, so system
// messages are extracted from the conversation before the call.
func (m *ChatModel) Chat(ctx context.Context, req model.ChatRequest) (model.ChatOut, error) {
	if m.apiKey == "" {
		return model.ChatOut{}, errors.New("anthropic API key is required")
	}
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	system, conversation := extractSystemPrompt(req.Messages)

	msgs := make([]anthropic.MessageParam, 0, len(conversation))
	for _, msg := range conversation {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == model.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelName),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	client := anthropic.NewClient(option.WithAPIKey(m.apiKey))
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return model.ChatOut{Text: sb.String()}, nil
}

// extractSystemPrompt separates system messages from the conversation.
// Multiple system messages are concatenated.
func extractSystemPrompt(messages []model.Message) (string, []model.Message) {
	var system strings.Builder
	var conversation []model.Message

	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
			continue
		}
		conversation = append(conversation, msg)
	}
	return system.String(), conversation
}
