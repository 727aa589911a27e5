// Package openai provides ChatModel and Embedder adapters for the OpenAI
// API.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dshills/blogsmith/model"
)

const (
	defaultChatModel  = "gpt-4o-mini"
	defaultEmbedModel = "text-embedding-3-small"
)

// ChatModel implements model.ChatModel for OpenAI chat completions.
type ChatModel struct {
	modelName string
	opts      []option.RequestOption
}

// NewChatModel creates an OpenAI ChatModel. An empty modelName selects
// gpt-4o-mini; baseURL overrides the API endpoint when non-empty (for
// OpenAI-compatible gateways).
func NewChatModel(apiKey, modelName, baseURL string) *ChatModel {
	if modelName == "" {
		modelName = defaultChatModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &ChatModel{modelName: modelName, opts: opts}
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, req model.ChatRequest) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	client := openai.NewClient(m.opts...)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case model.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(msg.Content))
		default:
			msgs = append(msgs, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.modelName),
		Messages: msgs,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.ChatOut{}, errors.New("openai: empty choices")
	}
	return model.ChatOut{Text: resp.Choices[0].Message.Content}, nil
}

// Embedder implements model.Embedder for OpenAI embedding models.
type Embedder struct {
	modelName string
	opts      []option.RequestOption
}

// NewEmbedder creates an OpenAI Embedder. An empty modelName selects
// text-embedding-3-small.
func NewEmbedder(apiKey, modelName string) *Embedder {
	if modelName == "" {
		modelName = defaultEmbedModel
	}
	return &Embedder{
		modelName: modelName,
		opts:      []option.RequestOption{option.WithAPIKey(apiKey)},
	}
}

// Embed implements the model.Embedder interface.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	client := openai.NewClient(e.opts...)
	resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.modelName),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: empty embedding response")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
