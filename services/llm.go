// Package services implements the AI capabilities behind the blog
// workflow: text generation, topic research, content creation and
// retrieval-augmented context.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/blogsmith/cache"
	"github.com/dshills/blogsmith/model"
)

const defaultTemperature = 0.7

// LLM wraps a chat model and embedder with response caching. The cache
// may be nil, in which case every call goes to the model.
type LLM struct {
	chat  model.ChatModel
	embed model.Embedder
	cache *cache.Cache
}

// NewLLM builds the service. embed and c may be nil.
func NewLLM(chat model.ChatModel, embed model.Embedder, c *cache.Cache) *LLM {
	return &LLM{chat: chat, embed: embed, cache: c}
}

// Generate produces text for the prompt at the given temperature
// (defaultTemperature when temp <= 0). Identical prompt/system/temp
// combinations are served from cache for an hour.
func (l *LLM) Generate(ctx context.Context, prompt, system string, temp float64) (string, error) {
	if temp <= 0 {
		temp = defaultTemperature
	}
	key := cache.Key("llm:gen", prompt, system, temp)
	var cached string
	if l.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	msgs := []model.Message{}
	if system != "" {
		msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: system})
	}
	msgs = append(msgs, model.Message{Role: model.RoleUser, Content: prompt})

	out, err := l.chat.Chat(ctx, model.ChatRequest{Messages: msgs, Temperature: temp})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	l.cache.SetJSON(ctx, key, out.Text, cache.TTLLong)
	return out.Text, nil
}

// GenerateStructured asks the model for JSON and decodes it into a
// generic map. Responses are not cached since low-temperature structured
// calls are usually unique per workflow run. When the model returns
// something that is not valid JSON the raw text is preserved under a
// "raw_response" key instead of failing the call.
func (l *LLM) GenerateStructured(ctx context.Context, prompt, system string) (map[string]interface{}, error) {
	full := prompt + "\n\nRespond with valid JSON only, no markdown formatting."

	msgs := []model.Message{}
	if system != "" {
		msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: system})
	}
	msgs = append(msgs, model.Message{Role: model.RoleUser, Content: full})

	out, err := l.chat.Chat(ctx, model.ChatRequest{Messages: msgs, Temperature: 0.3})
	if err != nil {
		return nil, fmt.Errorf("generate structured: %w", err)
	}

	text := stripFences(out.Text)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return map[string]interface{}{"raw_response": out.Text}, nil
	}
	return result, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// EmbedText returns the embedding for one text, cached for a day.
func (l *LLM) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if l.embed == nil {
		return nil, fmt.Errorf("embed: no embedder configured")
	}
	key := cache.Key("llm:embed", text)
	var cached []float32
	if l.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	vec, err := l.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	l.cache.SetJSON(ctx, key, vec, cache.TTLDay)
	return vec, nil
}

// EmbedDocuments embeds each text in order.
func (l *LLM) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := l.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, v)
	}
	return vecs, nil
}

// CountTokens estimates the token count of text. Four characters per
// token is close enough for budget checks.
func (l *LLM) CountTokens(text string) int {
	return len(text) / 4
}
