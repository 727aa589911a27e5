// Package workflow wires the blog-generation pipeline: research,
// outline, draft, review and SEO optimization with a bounded revision
// loop.
package workflow

import (
	"fmt"

	"github.com/dshills/blogsmith/types"
)

// Workflow statuses.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Pipeline progress markers.
type Step string

const (
	StepStarting     Step = "starting"
	StepResearchDone Step = "research_complete"
	StepOutlineDone  Step = "outline_complete"
	StepDraftDone    Step = "draft_complete"
	StepReviewDone   Step = "review_complete"
	StepComplete     Step = "complete"
)

// BlogState is the accumulated workflow state. Nodes return sparse
// deltas; ReduceBlogState folds them into the previous state. Messages
// is append-only. NeedsRevision is a pointer so a later pass can
// overwrite an earlier true.
type BlogState struct {
	Topic          string `json:"topic"`
	Niche          string `json:"niche,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	TargetWords    int    `json:"target_words,omitempty"`
	Tone           string `json:"tone,omitempty"`
	IncludeCode    bool   `json:"include_code,omitempty"`

	Research     *types.ResearchFindings `json:"research,omitempty"`
	Outline      *types.Outline          `json:"outline,omitempty"`
	Draft        *types.Draft            `json:"draft,omitempty"`
	SEO          *types.SEOResult        `json:"seo,omitempty"`
	FinalContent *types.FinalContent     `json:"final_content,omitempty"`

	QualityScore   float64 `json:"quality_score,omitempty"`
	NeedsRevision  *bool   `json:"needs_revision,omitempty"`
	ReviewFeedback string  `json:"review_feedback,omitempty"`
	RevisionCount  int     `json:"revision_count"`

	Messages    []string `json:"messages"`
	Status      Status   `json:"status,omitempty"`
	CurrentStep Step     `json:"current_step,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewInitialState seeds the workflow for a topic.
func NewInitialState(topic, niche, audience string, words int, tone string, includeCode bool) BlogState {
	f := false
	return BlogState{
		Topic:          topic,
		Niche:          niche,
		TargetAudience: audience,
		TargetWords:    words,
		Tone:           tone,
		IncludeCode:    includeCode,
		NeedsRevision:  &f,
		Messages:       []string{fmt.Sprintf("Starting blog workflow for: %s", topic)},
		Status:         StatusInProgress,
		CurrentStep:    StepStarting,
	}
}

// ReduceBlogState merges a node delta into the previous state. Scalar
// and pointer fields overwrite only when the delta sets them; Messages
// append; RevisionCount takes the larger value so replayed merges stay
// idempotent.
func ReduceBlogState(prev, delta BlogState) BlogState {
	out := prev

	if delta.Topic != "" {
		out.Topic = delta.Topic
	}
	if delta.Niche != "" {
		out.Niche = delta.Niche
	}
	if delta.TargetAudience != "" {
		out.TargetAudience = delta.TargetAudience
	}
	if delta.TargetWords != 0 {
		out.TargetWords = delta.TargetWords
	}
	if delta.Tone != "" {
		out.Tone = delta.Tone
	}
	if delta.IncludeCode {
		out.IncludeCode = true
	}

	if delta.Research != nil {
		out.Research = delta.Research
	}
	if delta.Outline != nil {
		out.Outline = delta.Outline
	}
	if delta.Draft != nil {
		out.Draft = delta.Draft
	}
	if delta.SEO != nil {
		out.SEO = delta.SEO
	}
	if delta.FinalContent != nil {
		out.FinalContent = delta.FinalContent
	}

	if delta.QualityScore != 0 {
		out.QualityScore = delta.QualityScore
	}
	if delta.NeedsRevision != nil {
		out.NeedsRevision = delta.NeedsRevision
	}
	if delta.ReviewFeedback != "" {
		out.ReviewFeedback = delta.ReviewFeedback
	}
	if delta.RevisionCount > out.RevisionCount {
		out.RevisionCount = delta.RevisionCount
	}

	out.Messages = append(append([]string{}, prev.Messages...), delta.Messages...)

	if delta.Status != "" {
		out.Status = delta.Status
	}
	if delta.CurrentStep != "" {
		out.CurrentStep = delta.CurrentStep
	}
	if delta.Error != "" {
		out.Error = delta.Error
	}
	return out
}

func (s BlogState) needsRevision() bool {
	return s.NeedsRevision != nil && *s.NeedsRevision
}
