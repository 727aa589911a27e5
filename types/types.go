// Package types defines the structured payloads produced and consumed by
// the blog-generation pipeline.
package types

// Finding is one research result with a confidence rating.
type Finding struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// ResearchFindings is the output of the research capability.
type ResearchFindings struct {
	ID                   string    `json:"id"`
	Topic                string    `json:"topic"`
	Summary              string    `json:"summary,omitempty"`
	Findings             []Finding `json:"findings"`
	KeyConcepts          []string  `json:"key_concepts,omitempty"`
	BestPractices        []string  `json:"best_practices,omitempty"`
	CommonChallenges     []string  `json:"common_challenges,omitempty"`
	RecommendedResources []string  `json:"recommended_resources,omitempty"`
	Sources              []string  `json:"sources"`
}

// OutlineSection is one planned section of a blog post.
type OutlineSection struct {
	Title          string   `json:"title"`
	Points         []string `json:"points,omitempty"`
	HasCodeExample bool     `json:"has_code_example,omitempty"`
}

// SEOSuggestions carries keyword and meta-description hints attached to
// an outline.
type SEOSuggestions struct {
	Keywords        []string `json:"keywords,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
}

// Outline is the planned structure of a blog post.
type Outline struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Hook           string           `json:"hook,omitempty"`
	Sections       []OutlineSection `json:"sections"`
	SEOSuggestions SEOSuggestions   `json:"seo_suggestions,omitempty"`
	EstimatedWords int              `json:"estimated_words"`
}

// DraftMetadata records the generation parameters a draft was written
// with.
type DraftMetadata struct {
	Tone            string `json:"tone,omitempty"`
	TargetWordCount int    `json:"target_word_count,omitempty"`
	HasCodeExamples bool   `json:"has_code_examples,omitempty"`
}

// Draft is a full generated blog post in markdown.
type Draft struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	WordCount int           `json:"word_count"`
	Metadata  DraftMetadata `json:"metadata,omitempty"`
}

// SEOSuggestion is one actionable SEO improvement.
type SEOSuggestion struct {
	Type     string `json:"type,omitempty"`
	Message  string `json:"message,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// SEOResult is the output of the SEO optimization capability.
type SEOResult struct {
	OptimizedContent string          `json:"optimized_content"`
	Keywords         []string        `json:"keywords,omitempty"`
	MetaDescription  string          `json:"meta_description,omitempty"`
	TitleSuggestions []string        `json:"title_suggestions,omitempty"`
	Suggestions      []SEOSuggestion `json:"suggestions,omitempty"`
}

// SEOMetadata is the SEO payload attached to finished content.
type SEOMetadata struct {
	Keywords        []string        `json:"keywords"`
	MetaDescription string          `json:"meta_description"`
	Suggestions     []SEOSuggestion `json:"suggestions"`
}

// FinalContent is the finished, SEO-polished blog post.
type FinalContent struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// Explanation is the output of the concept-explanation capability.
type Explanation struct {
	Concept     string   `json:"concept"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples,omitempty"`
	Analogies   []string `json:"analogies,omitempty"`
	Mode        string   `json:"mode,omitempty"`
}

// SearchResult is one semantic search hit from the knowledge base.
type SearchResult struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Title    string            `json:"title,omitempty"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
