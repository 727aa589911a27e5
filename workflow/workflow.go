package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/blogsmith/graph"
	"github.com/dshills/blogsmith/graph/emit"
	"github.com/dshills/blogsmith/graph/store"
	"github.com/dshills/blogsmith/types"
)

// Policy holds the quality-gate knobs.
type Policy struct {
	// QualityThreshold is the review score at or above which a draft is
	// accepted without revision.
	QualityThreshold float64

	// MaxRevisions caps how many revision passes a run may take.
	MaxRevisions int

	// MaxSteps bounds total engine steps as a routing-bug backstop.
	MaxSteps int
}

// DefaultPolicy matches the standard quality gate: one revision pass,
// accept at score 7.
func DefaultPolicy() Policy {
	return Policy{QualityThreshold: 7, MaxRevisions: 1, MaxSteps: 25}
}

// ContentStore persists finished runs. Both methods are best effort;
// failures are reported in Result.Messages, never as run failures.
type ContentStore interface {
	CreateResearchSession(ctx context.Context, topic string, findings interface{}, sources []string) (string, error)
	CreateBlogPost(ctx context.Context, post BlogPostRecord) (id, slug string, err error)
}

// BlogPostRecord carries everything persisted for a finished post.
type BlogPostRecord struct {
	Title           string
	Content         string
	Outline         *types.Outline
	Niche           string
	TargetAudience  string
	MetaDescription string
	Keywords        []string
	WordCount       int
	Status          string
}

// Request describes one blog-generation run.
type Request struct {
	Topic          string
	Niche          string
	TargetAudience string
	TargetWords    int
	Tone           string
	IncludeCode    bool

	// SaveToStore persists the finished post and research session when
	// the run completes successfully.
	SaveToStore bool
}

// Result is the outcome of one run.
type Result struct {
	RunID        string                  `json:"run_id"`
	Status       Status                  `json:"status"`
	Topic        string                  `json:"topic"`
	Messages     []string                `json:"messages"`
	Research     *types.ResearchFindings `json:"research,omitempty"`
	Outline      *types.Outline          `json:"outline,omitempty"`
	Draft        *types.Draft            `json:"draft,omitempty"`
	FinalContent *types.FinalContent     `json:"final_content,omitempty"`
	SEOMetadata  *types.SEOMetadata      `json:"seo_metadata,omitempty"`
	QualityScore float64                 `json:"quality_score,omitempty"`
	Revisions    int                     `json:"revisions"`
	Error        string                  `json:"error,omitempty"`

	// Saved maps artifact kind to stored id ("post", "post_slug",
	// "research_session") when persistence ran.
	Saved map[string]string `json:"saved,omitempty"`
}

// Runner owns a configured engine and executes blog workflows.
type Runner struct {
	engine  *graph.Engine[BlogState]
	content ContentStore
	policy  Policy
}

// NewRunner wires the five pipeline nodes into an engine over the given
// state store. emitter and metrics may be nil; contentStore may be nil
// when persistence is not wanted.
func NewRunner(research ResearchCapability, content ContentCapability, st store.Store[BlogState], emitter emit.Emitter, metrics *graph.Metrics, contentStore ContentStore, policy Policy) (*Runner, error) {
	if policy.QualityThreshold == 0 && policy.MaxRevisions == 0 && policy.MaxSteps == 0 {
		policy = DefaultPolicy()
	}
	if policy.MaxSteps == 0 {
		policy.MaxSteps = DefaultPolicy().MaxSteps
	}

	eng := graph.New[BlogState](ReduceBlogState, st, emitter, graph.Options{MaxSteps: policy.MaxSteps, Retries: 2})
	if metrics != nil {
		eng.WithMetrics(metrics)
	}

	nodes := map[string]graph.Node[BlogState]{
		NodeResearch: &researchNode{research: research},
		NodeOutline:  &outlineNode{content: content},
		NodeDraft:    &draftNode{content: content},
		NodeReview:   &reviewNode{content: content, policy: policy},
		NodeOptimize: &optimizeNode{content: content},
	}
	for id, n := range nodes {
		if err := eng.Add(id, n); err != nil {
			return nil, err
		}
	}
	if err := eng.StartAt(NodeResearch); err != nil {
		return nil, err
	}

	// Edge fallbacks mirror the routes the nodes return explicitly, so a
	// node that declines to route still moves the pipeline forward.
	edges := []struct {
		from, to string
		when     graph.Predicate[BlogState]
	}{
		{NodeResearch, NodeOutline, nil},
		{NodeOutline, NodeDraft, nil},
		{NodeDraft, NodeReview, nil},
		{NodeReview, NodeDraft, func(s BlogState) bool { return s.needsRevision() }},
		{NodeReview, NodeOptimize, nil},
	}
	for _, e := range edges {
		if err := eng.Connect(e.from, e.to, e.when); err != nil {
			return nil, err
		}
	}

	return &Runner{engine: eng, content: contentStore, policy: policy}, nil
}

// Run executes the full pipeline for one request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("workflow: topic is required")
	}
	runID := uuid.NewString()

	initial := NewInitialState(req.Topic, req.Niche, req.TargetAudience, req.TargetWords, req.Tone, req.IncludeCode)
	final, err := r.engine.Run(ctx, runID, initial)
	if err != nil {
		return nil, fmt.Errorf("workflow run %s: %w", runID, err)
	}

	result := buildResult(runID, final)
	if req.SaveToStore && r.content != nil && final.Status == StatusCompleted {
		r.persist(ctx, final, result)
	}
	return result, nil
}

// Engine exposes the underlying engine for checkpoint operations.
func (r *Runner) Engine() *graph.Engine[BlogState] {
	return r.engine
}

func buildResult(runID string, s BlogState) *Result {
	res := &Result{
		RunID:        runID,
		Status:       s.Status,
		Topic:        s.Topic,
		Messages:     s.Messages,
		Research:     s.Research,
		Outline:      s.Outline,
		Draft:        s.Draft,
		FinalContent: s.FinalContent,
		QualityScore: s.QualityScore,
		Revisions:    s.RevisionCount,
		Error:        s.Error,
	}
	if s.SEO != nil {
		res.SEOMetadata = &types.SEOMetadata{
			Keywords:        s.SEO.Keywords,
			MetaDescription: s.SEO.MetaDescription,
			Suggestions:     s.SEO.Suggestions,
		}
	}
	return res
}

// persist saves the research session and blog post. Failures become
// messages on the result.
func (r *Runner) persist(ctx context.Context, s BlogState, res *Result) {
	res.Saved = map[string]string{}

	if s.Research != nil {
		id, err := r.content.CreateResearchSession(ctx, s.Topic, s.Research, s.Research.Sources)
		if err != nil {
			res.Messages = append(res.Messages, fmt.Sprintf("Warning: failed to save research session: %s", err))
		} else {
			res.Saved["research_session"] = id
		}
	}

	if s.FinalContent != nil {
		post := BlogPostRecord{
			Title:          s.FinalContent.Title,
			Content:        s.FinalContent.Content,
			Outline:        s.Outline,
			Niche:          s.Niche,
			TargetAudience: s.TargetAudience,
			WordCount:      s.FinalContent.WordCount,
			Status:         string(s.Status),
		}
		if s.SEO != nil {
			post.MetaDescription = s.SEO.MetaDescription
			post.Keywords = s.SEO.Keywords
		}
		id, slug, err := r.content.CreateBlogPost(ctx, post)
		if err != nil {
			res.Messages = append(res.Messages, fmt.Sprintf("Warning: failed to save blog post: %s", err))
		} else {
			res.Saved["post"] = id
			res.Saved["post_slug"] = slug
		}
	}
}
