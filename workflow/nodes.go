package workflow

import (
	"context"
	"fmt"

	"github.com/dshills/blogsmith/graph"
	"github.com/dshills/blogsmith/types"
)

// Node ids.
const (
	NodeResearch = "research"
	NodeOutline  = "outline"
	NodeDraft    = "draft"
	NodeReview   = "review"
	NodeOptimize = "optimize"
)

// ResearchCapability is the slice of the research service the pipeline
// needs.
type ResearchCapability interface {
	ResearchTopic(ctx context.Context, topic, niche string) (*types.ResearchFindings, error)
}

// ContentCapability is the slice of the content service the pipeline
// needs.
type ContentCapability interface {
	GenerateOutline(ctx context.Context, topic, audience string, wordCount int, findings *types.ResearchFindings) (*types.Outline, error)
	GenerateDraft(ctx context.Context, outline *types.Outline, tone string, wordCount int, hasCode bool, feedback string) (*types.Draft, error)
	ReviewDraft(ctx context.Context, draft *types.Draft, topic, audience string) (score float64, needsRevision bool, feedback string, err error)
	OptimizeSEO(ctx context.Context, draft *types.Draft, keywords []string) (*types.SEOResult, error)
}

// researchNode gathers topic findings. Research failure is fatal: the
// rest of the pipeline cannot produce grounded content without it.
type researchNode struct {
	research ResearchCapability
}

func (n *researchNode) Run(ctx context.Context, state BlogState) graph.NodeResult[BlogState] {
	findings, err := n.research.ResearchTopic(ctx, state.Topic, state.Niche)
	if err != nil {
		return failResult("Research failed", err)
	}
	return graph.NodeResult[BlogState]{
		Delta: BlogState{
			Research:    findings,
			Messages:    []string{fmt.Sprintf("Research completed: Found %d findings", len(findings.Findings))},
			CurrentStep: StepResearchDone,
		},
		Route: graph.Goto(NodeOutline),
	}
}

// outlineNode plans the post structure. Outline failure is fatal.
type outlineNode struct {
	content ContentCapability
}

func (n *outlineNode) Run(ctx context.Context, state BlogState) graph.NodeResult[BlogState] {
	words := state.TargetWords
	if words == 0 {
		words = 2000
	}
	outline, err := n.content.GenerateOutline(ctx, state.Topic, state.TargetAudience, words, state.Research)
	if err != nil {
		return failResult("Outline failed", err)
	}
	return graph.NodeResult[BlogState]{
		Delta: BlogState{
			Outline:     outline,
			Messages:    []string{fmt.Sprintf("Outline created: %d sections", len(outline.Sections))},
			CurrentStep: StepOutlineDone,
		},
		Route: graph.Goto(NodeDraft),
	}
}

// draftNode writes the post. On a revision pass it feeds the review
// feedback back into the prompt. Draft failure is fatal.
type draftNode struct {
	content ContentCapability
}

func (n *draftNode) Run(ctx context.Context, state BlogState) graph.NodeResult[BlogState] {
	words := state.TargetWords
	if words == 0 && state.Outline != nil {
		words = state.Outline.EstimatedWords
	}
	var feedback string
	if state.needsRevision() {
		feedback = state.ReviewFeedback
	}
	draft, err := n.content.GenerateDraft(ctx, state.Outline, state.Tone, words, state.IncludeCode, feedback)
	if err != nil {
		return failResult("Draft failed", err)
	}
	return graph.NodeResult[BlogState]{
		Delta: BlogState{
			Draft:       draft,
			Messages:    []string{fmt.Sprintf("Draft written: %d words", draft.WordCount)},
			CurrentStep: StepDraftDone,
		},
		Route: graph.Goto(NodeReview),
	}
}

// reviewNode scores the draft and decides whether another revision pass
// runs. Review failure never fails the workflow: the draft simply skips
// straight to optimization.
type reviewNode struct {
	content ContentCapability
	policy  Policy
}

func (n *reviewNode) Run(ctx context.Context, state BlogState) graph.NodeResult[BlogState] {
	score, modelSaysRevise, feedback, err := n.content.ReviewDraft(ctx, state.Draft, state.Topic, state.TargetAudience)
	if err != nil {
		skip := false
		return graph.NodeResult[BlogState]{
			Delta: BlogState{
				NeedsRevision: &skip,
				Messages:      []string{fmt.Sprintf("Review skipped due to error: %s", err)},
				CurrentStep:   StepReviewDone,
			},
			Route: graph.Goto(NodeOptimize),
		}
	}

	// The revision gate: the model's verdict combined with the quality
	// threshold, forced off once the revision budget is spent.
	needs := modelSaysRevise && score < n.policy.QualityThreshold
	if state.RevisionCount >= n.policy.MaxRevisions {
		needs = false
	}

	delta := BlogState{
		QualityScore:   score,
		NeedsRevision:  &needs,
		ReviewFeedback: feedback,
		RevisionCount:  minInt(state.RevisionCount+1, n.policy.MaxRevisions),
		Messages:       []string{fmt.Sprintf("Review complete: Score %v/10, Needs revision: %t", score, needs)},
		CurrentStep:    StepReviewDone,
	}

	route := graph.Goto(NodeOptimize)
	if needs {
		route = graph.Goto(NodeDraft)
	}
	return graph.NodeResult[BlogState]{Delta: delta, Route: route}
}

// optimizeNode applies the SEO pass and assembles final content. SEO
// failure degrades: the raw draft becomes the final content.
type optimizeNode struct {
	content ContentCapability
}

func (n *optimizeNode) Run(ctx context.Context, state BlogState) graph.NodeResult[BlogState] {
	var keywords []string
	if state.Outline != nil {
		keywords = state.Outline.SEOSuggestions.Keywords
	}

	seo, err := n.content.OptimizeSEO(ctx, state.Draft, keywords)
	if err != nil {
		return graph.NodeResult[BlogState]{
			Delta: BlogState{
				FinalContent: &types.FinalContent{
					ID:        state.Draft.ID,
					Title:     state.Draft.Title,
					Content:   state.Draft.Content,
					WordCount: state.Draft.WordCount,
				},
				SEO:         &types.SEOResult{},
				Messages:    []string{fmt.Sprintf("SEO skipped: %s, using draft as final", err)},
				Status:      StatusCompleted,
				CurrentStep: StepComplete,
			},
			Route: graph.Stop(),
		}
	}

	// Word count stays the draft's: SEO rewrites phrasing, the size of
	// the piece is the writer's.
	final := &types.FinalContent{
		ID:        state.Draft.ID,
		Title:     state.Draft.Title,
		Content:   seo.OptimizedContent,
		WordCount: state.Draft.WordCount,
	}

	return graph.NodeResult[BlogState]{
		Delta: BlogState{
			SEO:          seo,
			FinalContent: final,
			Messages:     []string{"SEO optimization complete"},
			Status:       StatusCompleted,
			CurrentStep:  StepComplete,
		},
		Route: graph.Stop(),
	}
}

// failResult builds the terminal delta for a fatal node failure.
func failResult(label string, err error) graph.NodeResult[BlogState] {
	return graph.NodeResult[BlogState]{
		Delta: BlogState{
			Messages: []string{fmt.Sprintf("%s: %s", label, err)},
			Status:   StatusFailed,
			Error:    fmt.Sprintf("%s: %s", label, err),
		},
		Route: graph.Stop(),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
