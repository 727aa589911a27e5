package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/blogsmith/types"
)

const (
	maxReviewContentChars = 3000
	maxSEOContentChars    = 5000

	// defaultQualityScore applies when the review response omits a score.
	defaultQualityScore = 8
)

// Content generates outlines, drafts and SEO passes.
type Content struct {
	llm *LLM
}

// NewContent builds the service.
func NewContent(llm *LLM) *Content {
	return &Content{llm: llm}
}

// GenerateOutline plans a post from research findings.
func (c *Content) GenerateOutline(ctx context.Context, topic, audience string, wordCount int, findings *types.ResearchFindings) (*types.Outline, error) {
	var findingsJSON string
	if findings != nil {
		raw, err := json.Marshal(findings)
		if err != nil {
			return nil, fmt.Errorf("generate outline: %w", err)
		}
		findingsJSON = string(raw)
	}

	raw, err := c.llm.GenerateStructured(ctx, outlinePrompt(topic, audience, wordCount, findingsJSON), outlineSystem)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}

	var outline types.Outline
	if err := decodeInto(raw, &outline); err != nil {
		return nil, fmt.Errorf("generate outline: decode: %w", err)
	}
	if outline.ID == "" {
		outline.ID = "outline_" + randomHex(6)
	}
	if outline.Title == "" {
		outline.Title = "Guide to " + topic
	}
	if outline.EstimatedWords == 0 {
		outline.EstimatedWords = wordCount
	}
	return &outline, nil
}

// GenerateDraft writes a full markdown post from the outline. feedback
// carries review notes when the draft is a revision.
func (c *Content) GenerateDraft(ctx context.Context, outline *types.Outline, tone string, wordCount int, hasCode bool, feedback string) (*types.Draft, error) {
	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	text, err := c.llm.Generate(ctx, draftPrompt(string(outlineJSON), tone, wordCount, hasCode, feedback), draftSystem, 0)
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	title := outline.Title
	if t := firstHeading(text); t != "" {
		title = t
	}
	return &types.Draft{
		ID:        "draft_" + randomHex(6),
		Title:     title,
		Content:   text,
		WordCount: len(strings.Fields(text)),
		Metadata: types.DraftMetadata{
			Tone:            tone,
			TargetWordCount: wordCount,
			HasCodeExamples: hasCode,
		},
	}, nil
}

// firstHeading extracts the first level-1 markdown heading.
func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// ReviewDraft scores a draft against its topic and audience and decides
// whether it needs revision. Only the first maxReviewContentChars of the
// draft reach the prompt.
func (c *Content) ReviewDraft(ctx context.Context, draft *types.Draft, topic, audience string) (score float64, needsRevision bool, feedback string, err error) {
	content := draft.Content
	if len(content) > maxReviewContentChars {
		content = content[:maxReviewContentChars]
	}
	raw, err := c.llm.GenerateStructured(ctx, reviewPrompt(draft.Title, topic, audience, content), reviewSystem)
	if err != nil {
		return 0, false, "", fmt.Errorf("review draft: %w", err)
	}
	score = defaultQualityScore
	if s, ok := raw["quality_score"].(float64); ok {
		score = s
	}
	if n, ok := raw["needs_revision"].(bool); ok {
		needsRevision = n
	}
	if f, ok := raw["feedback"].(string); ok {
		feedback = f
	}
	return score, needsRevision, feedback, nil
}

// OptimizeSEO applies an SEO pass to the draft. Content beyond
// maxSEOContentChars is truncated in the prompt to stay within context
// limits; the optimized content defaults back to the input when the
// model omits it.
func (c *Content) OptimizeSEO(ctx context.Context, draft *types.Draft, keywords []string) (*types.SEOResult, error) {
	content := draft.Content
	if len(content) > maxSEOContentChars {
		content = content[:maxSEOContentChars]
	}

	raw, err := c.llm.GenerateStructured(ctx, seoPrompt(draft.Title, content, keywords), seoSystem)
	if err != nil {
		return nil, fmt.Errorf("optimize seo: %w", err)
	}

	var result types.SEOResult
	if err := decodeInto(raw, &result); err != nil {
		return nil, fmt.Errorf("optimize seo: decode: %w", err)
	}
	if result.OptimizedContent == "" {
		result.OptimizedContent = draft.Content
	}
	return &result, nil
}
