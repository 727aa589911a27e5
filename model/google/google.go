// Package google provides ChatModel and Embedder adapters for the Google
// Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/blogsmith/model"
)

const (
	defaultChatModel  = "gemini-2.5-flash"
	defaultEmbedModel = "embedding-001"
)

// ChatModel implements model.ChatModel for Google's Gemini API.
//
// Example:
//
//	m := google.NewChatModel(os.Getenv("GOOGLE_API_KEY"), "")
//	out, err := m.Chat(ctx, model.ChatRequest{Messages: msgs})
type ChatModel struct {
	apiKey    string
	modelName string
	client    googleClient
}

// googleClient is the seam for mocking the Gemini API in tests.
type googleClient interface {
	generateContent(ctx context.Context, req model.ChatRequest) (model.ChatOut, error)
}

// NewChatModel creates a Gemini ChatModel. An empty modelName selects
// gemini-2.5-flash.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = defaultChatModel
	}
	return &ChatModel{
		apiKey:    apiKey,
		modelName: modelName,
		client:    &defaultClient{apiKey: apiKey, modelName: modelName},
	}
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, req model.ChatRequest) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}
	return m.client.generateContent(ctx, req)
}

// defaultClient wraps the official Google Gemini SDK.
type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) generateContent(ctx context.Context, req model.ChatRequest) (model.ChatOut, error) {
	if c.apiKey == "" {
		return model.ChatOut{}, errors.New("google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("failed to create Google client: %w", err)
	}
	defer func() { _ = client.Close() }()

	gm := client.GenerativeModel(c.modelName)
	if req.Temperature > 0 {
		gm.SetTemperature(float32(req.Temperature))
	}

	system, parts := splitMessages(req.Messages)
	if system != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("google API error: %w", err)
	}
	return convertResponse(resp), nil
}

// splitMessages separates system messages (Gemini takes them as
// SystemInstruction) from the conversation content.
func splitMessages(messages []model.Message) (string, []genai.Part) {
	var system strings.Builder
	var parts []genai.Part

	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		if msg.Role == model.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	return system.String(), parts
}

// convertResponse flattens the first candidate's text parts.
func convertResponse(resp *genai.GenerateContentResponse) model.ChatOut {
	out := model.ChatOut{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out.Text = sb.String()
	return out
}

// Embedder implements model.Embedder for Gemini embedding models.
type Embedder struct {
	apiKey    string
	modelName string
}

// NewEmbedder creates a Gemini Embedder. An empty modelName selects
// embedding-001.
func NewEmbedder(apiKey, modelName string) *Embedder {
	if modelName == "" {
		modelName = defaultEmbedModel
	}
	return &Embedder{apiKey: apiKey, modelName: modelName}
}

// Embed implements the model.Embedder interface.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, errors.New("google API key is required")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}
	defer func() { _ = client.Close() }()

	em := client.EmbeddingModel(e.modelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("google embedding error: %w", err)
	}
	if res.Embedding == nil {
		return nil, errors.New("google embedding returned no values")
	}
	return res.Embedding.Values, nil
}
