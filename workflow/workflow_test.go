package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/blogsmith/graph/store"
	"github.com/dshills/blogsmith/types"
)

// fakeResearch returns canned findings.
type fakeResearch struct {
	findings *types.ResearchFindings
	err      error
	calls    int
}

func (f *fakeResearch) ResearchTopic(_ context.Context, topic, _ string) (*types.ResearchFindings, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.findings != nil {
		return f.findings, nil
	}
	return &types.ResearchFindings{
		ID:       "research_test",
		Topic:    topic,
		Findings: []types.Finding{{Title: "finding one"}, {Title: "finding two"}},
		Sources:  []string{"src"},
	}, nil
}

// reviewVerdict is one scripted review outcome.
type reviewVerdict struct {
	score    float64
	revise   bool
	feedback string
	err      error
}

// fakeContent scripts the content capability. Reviews are consumed in
// order; the last verdict repeats.
type fakeContent struct {
	outlineErr  error
	draftErr    error
	seoErr      error
	reviews     []reviewVerdict
	reviewCalls int

	outlineCalls   int
	draftCalls     int
	seoCalls       int
	lastOutlineWC  int
	draftFeedbacks []string

	lastReviewTopic    string
	lastReviewAudience string
}

func (f *fakeContent) GenerateOutline(_ context.Context, topic, _ string, wordCount int, _ *types.ResearchFindings) (*types.Outline, error) {
	f.outlineCalls++
	f.lastOutlineWC = wordCount
	if f.outlineErr != nil {
		return nil, f.outlineErr
	}
	return &types.Outline{
		ID:             "outline_test",
		Title:          "Guide to " + topic,
		Sections:       []types.OutlineSection{{Title: "Intro"}, {Title: "Body"}, {Title: "Wrap-up"}},
		SEOSuggestions: types.SEOSuggestions{Keywords: []string{"go"}},
		EstimatedWords: wordCount,
	}, nil
}

func (f *fakeContent) GenerateDraft(_ context.Context, outline *types.Outline, _ string, _ int, _ bool, feedback string) (*types.Draft, error) {
	f.draftCalls++
	f.draftFeedbacks = append(f.draftFeedbacks, feedback)
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	return &types.Draft{
		ID:        "draft_test",
		Title:     outline.Title,
		Content:   "# " + outline.Title + "\n\nbody text here",
		WordCount: 5,
	}, nil
}

func (f *fakeContent) ReviewDraft(_ context.Context, _ *types.Draft, topic, audience string) (float64, bool, string, error) {
	idx := f.reviewCalls
	f.reviewCalls++
	f.lastReviewTopic = topic
	f.lastReviewAudience = audience
	if idx >= len(f.reviews) {
		idx = len(f.reviews) - 1
	}
	if idx < 0 {
		return 9, false, "", nil
	}
	v := f.reviews[idx]
	return v.score, v.revise, v.feedback, v.err
}

func (f *fakeContent) OptimizeSEO(_ context.Context, draft *types.Draft, _ []string) (*types.SEOResult, error) {
	f.seoCalls++
	if f.seoErr != nil {
		return nil, f.seoErr
	}
	return &types.SEOResult{
		OptimizedContent: draft.Content + "\n\noptimized",
		Keywords:         []string{"go", "testing"},
		MetaDescription:  "meta",
	}, nil
}

func newTestRunner(t *testing.T, research *fakeResearch, content *fakeContent, cs ContentStore) *Runner {
	t.Helper()
	r, err := NewRunner(research, content, store.NewMemStore[BlogState](), nil, nil, cs, DefaultPolicy())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestRunHappyPath(t *testing.T) {
	research := &fakeResearch{}
	content := &fakeContent{reviews: []reviewVerdict{{score: 9, revise: false}}}
	runner := newTestRunner(t, research, content, nil)

	res, err := runner.Run(context.Background(), Request{Topic: "go generics", TargetAudience: "advanced", TargetWords: 1500})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", res.Status)
	}
	if res.Revisions != 1 {
		t.Errorf("Revisions = %d, want 1 (one review pass)", res.Revisions)
	}
	if res.QualityScore != 9 {
		t.Errorf("QualityScore = %v, want 9", res.QualityScore)
	}
	if content.draftCalls != 1 {
		t.Errorf("draft calls = %d, want 1", content.draftCalls)
	}
	if content.lastReviewTopic != "go generics" || content.lastReviewAudience != "advanced" {
		t.Errorf("review saw topic=%q audience=%q", content.lastReviewTopic, content.lastReviewAudience)
	}
	if res.FinalContent == nil || !strings.Contains(res.FinalContent.Content, "optimized") {
		t.Error("FinalContent should carry the SEO-optimized text")
	}
	// word count is carried from the draft, not recomputed from the
	// rewritten text
	if res.FinalContent != nil && res.FinalContent.WordCount != res.Draft.WordCount {
		t.Errorf("FinalContent.WordCount = %d, want draft's %d", res.FinalContent.WordCount, res.Draft.WordCount)
	}
	if res.SEOMetadata == nil || res.SEOMetadata.MetaDescription != "meta" {
		t.Errorf("SEOMetadata = %+v", res.SEOMetadata)
	}

	wantOrder := []string{
		"Starting blog workflow for: go generics",
		"Research completed: Found 2 findings",
		"Outline created: 3 sections",
		"Draft written: 5 words",
		"Review complete: Score 9/10, Needs revision: false",
		"SEO optimization complete",
	}
	if len(res.Messages) != len(wantOrder) {
		t.Fatalf("Messages = %v", res.Messages)
	}
	for i, want := range wantOrder {
		if res.Messages[i] != want {
			t.Errorf("Messages[%d] = %q, want %q", i, res.Messages[i], want)
		}
	}
}

func TestRunRevisionLoop(t *testing.T) {
	research := &fakeResearch{}
	content := &fakeContent{reviews: []reviewVerdict{
		{score: 5, revise: true, feedback: "expand the intro"},
		{score: 5, revise: true, feedback: "still thin"},
	}}
	runner := newTestRunner(t, research, content, nil)

	res, err := runner.Run(context.Background(), Request{Topic: "go channels"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", res.Status)
	}
	if content.draftCalls != 2 {
		t.Errorf("draft calls = %d, want 2 (original + one revision)", content.draftCalls)
	}
	if content.reviewCalls != 2 {
		t.Errorf("review calls = %d, want 2", content.reviewCalls)
	}
	if res.Revisions != 1 {
		t.Errorf("Revisions = %d, want 1 (cap)", res.Revisions)
	}
	if content.seoCalls != 1 {
		t.Errorf("seo calls = %d, want 1", content.seoCalls)
	}

	// the revision draft receives the reviewer's feedback
	if len(content.draftFeedbacks) != 2 || content.draftFeedbacks[0] != "" || content.draftFeedbacks[1] != "expand the intro" {
		t.Errorf("draft feedbacks = %v", content.draftFeedbacks)
	}

	// second review is forced to accept because the budget is spent
	if !hasMessage(res.Messages, "Score 5/10, Needs revision: true") {
		t.Errorf("missing first review message: %v", res.Messages)
	}
	if !hasMessage(res.Messages, "Score 5/10, Needs revision: false") {
		t.Errorf("missing forced-accept review message: %v", res.Messages)
	}
}

func TestRunRevisionSkippedWhenScoreHigh(t *testing.T) {
	// the model asks for revision but the score clears the threshold
	research := &fakeResearch{}
	content := &fakeContent{reviews: []reviewVerdict{{score: 8, revise: true}}}
	runner := newTestRunner(t, research, content, nil)

	res, err := runner.Run(context.Background(), Request{Topic: "topic"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if content.draftCalls != 1 {
		t.Errorf("draft calls = %d, want 1", content.draftCalls)
	}
	if res.Revisions != 1 {
		t.Errorf("Revisions = %d, want 1 (the pass still counts)", res.Revisions)
	}
}

func TestRunFatalFailures(t *testing.T) {
	t.Run("research failure stops the run", func(t *testing.T) {
		research := &fakeResearch{err: errors.New("api quota exceeded")}
		content := &fakeContent{}
		runner := newTestRunner(t, research, content, nil)

		res, err := runner.Run(context.Background(), Request{Topic: "topic"})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Status != StatusFailed {
			t.Errorf("Status = %q, want failed", res.Status)
		}
		if !strings.Contains(res.Error, "Research failed") {
			t.Errorf("Error = %q", res.Error)
		}
		if content.outlineCalls != 0 {
			t.Error("outline must not run after a fatal research failure")
		}
	})

	t.Run("outline failure stops the run", func(t *testing.T) {
		research := &fakeResearch{}
		content := &fakeContent{outlineErr: errors.New("model unavailable")}
		runner := newTestRunner(t, research, content, nil)

		res, err := runner.Run(context.Background(), Request{Topic: "topic"})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Status != StatusFailed {
			t.Errorf("Status = %q, want failed", res.Status)
		}
		if !hasMessage(res.Messages, "Outline failed") {
			t.Errorf("Messages = %v", res.Messages)
		}
		if content.draftCalls != 0 {
			t.Error("draft must not run after a fatal outline failure")
		}
	})

	t.Run("draft failure stops the run", func(t *testing.T) {
		research := &fakeResearch{}
		content := &fakeContent{draftErr: errors.New("timeout")}
		runner := newTestRunner(t, research, content, nil)

		res, err := runner.Run(context.Background(), Request{Topic: "topic"})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Status != StatusFailed {
			t.Errorf("Status = %q, want failed", res.Status)
		}
		if content.reviewCalls != 0 {
			t.Error("review must not run after a fatal draft failure")
		}
	})
}

func TestRunReviewDegrades(t *testing.T) {
	research := &fakeResearch{}
	content := &fakeContent{reviews: []reviewVerdict{{err: errors.New("review model down")}}}
	runner := newTestRunner(t, research, content, nil)

	res, err := runner.Run(context.Background(), Request{Topic: "topic"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed despite review failure", res.Status)
	}
	if !hasMessage(res.Messages, "Review skipped due to error: review model down") {
		t.Errorf("Messages = %v", res.Messages)
	}
	if content.seoCalls != 1 {
		t.Error("optimize should still run when review fails")
	}
	if content.draftCalls != 1 {
		t.Error("a failed review must never trigger a revision")
	}
	if res.Revisions != 0 {
		t.Errorf("Revisions = %d, want 0 (skipped reviews do not count)", res.Revisions)
	}
}

func TestRunSEODegrades(t *testing.T) {
	research := &fakeResearch{}
	content := &fakeContent{
		reviews: []reviewVerdict{{score: 8, revise: false}},
		seoErr:  errors.New("seo model down"),
	}
	runner := newTestRunner(t, research, content, nil)

	res, err := runner.Run(context.Background(), Request{Topic: "topic"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed despite seo failure", res.Status)
	}
	if !hasMessage(res.Messages, "SEO skipped: seo model down, using draft as final") {
		t.Errorf("Messages = %v", res.Messages)
	}
	if res.FinalContent == nil || res.FinalContent.Content != res.Draft.Content {
		t.Error("final content should fall back to the raw draft")
	}
	// the metadata object is present but empty, matching the wire shape
	// of a successful run
	if res.SEOMetadata == nil {
		t.Fatal("SEOMetadata should be an empty object, not absent")
	}
	if len(res.SEOMetadata.Keywords) != 0 || res.SEOMetadata.MetaDescription != "" {
		t.Errorf("SEOMetadata = %+v, want empty", res.SEOMetadata)
	}
}

func TestRunDefaultsTargetWords(t *testing.T) {
	research := &fakeResearch{}
	content := &fakeContent{reviews: []reviewVerdict{{score: 9}}}
	runner := newTestRunner(t, research, content, nil)

	if _, err := runner.Run(context.Background(), Request{Topic: "topic"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if content.lastOutlineWC != 2000 {
		t.Errorf("outline word count = %d, want default 2000", content.lastOutlineWC)
	}
}

func TestRunRequiresTopic(t *testing.T) {
	runner := newTestRunner(t, &fakeResearch{}, &fakeContent{}, nil)
	if _, err := runner.Run(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for empty topic")
	}
}

// fakeContentStore records persistence calls.
type fakeContentStore struct {
	researchErr error
	postErr     error

	researchCalls int
	postCalls     int
	savedPost     BlogPostRecord
}

func (f *fakeContentStore) CreateResearchSession(_ context.Context, _ string, _ interface{}, _ []string) (string, error) {
	f.researchCalls++
	if f.researchErr != nil {
		return "", f.researchErr
	}
	return "session-1", nil
}

func (f *fakeContentStore) CreateBlogPost(_ context.Context, post BlogPostRecord) (string, string, error) {
	f.postCalls++
	if f.postErr != nil {
		return "", "", f.postErr
	}
	f.savedPost = post
	return "post-1", "post-slug", nil
}

func TestRunPersistence(t *testing.T) {
	t.Run("saves on success", func(t *testing.T) {
		cs := &fakeContentStore{}
		content := &fakeContent{reviews: []reviewVerdict{{score: 9}}}
		runner := newTestRunner(t, &fakeResearch{}, content, cs)

		res, err := runner.Run(context.Background(), Request{
			Topic:          "topic",
			Niche:          "backend",
			TargetAudience: "intermediate",
			SaveToStore:    true,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Saved["post"] != "post-1" || res.Saved["post_slug"] != "post-slug" {
			t.Errorf("Saved = %v", res.Saved)
		}
		if res.Saved["research_session"] != "session-1" {
			t.Errorf("Saved = %v", res.Saved)
		}

		// the stored record carries the run's context, not just the text
		post := cs.savedPost
		if post.Niche != "backend" || post.TargetAudience != "intermediate" {
			t.Errorf("saved niche=%q audience=%q", post.Niche, post.TargetAudience)
		}
		if post.Outline == nil {
			t.Error("saved post should carry the outline")
		}
		if post.Status != string(StatusCompleted) {
			t.Errorf("saved status = %q, want completed", post.Status)
		}
		if post.MetaDescription != "meta" || len(post.Keywords) == 0 {
			t.Errorf("saved seo fields = %q / %v", post.MetaDescription, post.Keywords)
		}
	})

	t.Run("skips save when not requested", func(t *testing.T) {
		cs := &fakeContentStore{}
		content := &fakeContent{reviews: []reviewVerdict{{score: 9}}}
		runner := newTestRunner(t, &fakeResearch{}, content, cs)

		if _, err := runner.Run(context.Background(), Request{Topic: "topic"}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if cs.postCalls != 0 || cs.researchCalls != 0 {
			t.Error("persistence should not run without SaveToStore")
		}
	})

	t.Run("skips save on failed run", func(t *testing.T) {
		cs := &fakeContentStore{}
		runner := newTestRunner(t, &fakeResearch{err: errors.New("down")}, &fakeContent{}, cs)

		if _, err := runner.Run(context.Background(), Request{Topic: "topic", SaveToStore: true}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if cs.postCalls != 0 {
			t.Error("failed runs must not be persisted")
		}
	})

	t.Run("save failure degrades to a warning", func(t *testing.T) {
		cs := &fakeContentStore{postErr: errors.New("db down")}
		content := &fakeContent{reviews: []reviewVerdict{{score: 9}}}
		runner := newTestRunner(t, &fakeResearch{}, content, cs)

		res, err := runner.Run(context.Background(), Request{Topic: "topic", SaveToStore: true})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Status != StatusCompleted {
			t.Errorf("Status = %q, want completed", res.Status)
		}
		if !hasMessage(res.Messages, "Warning: failed to save blog post") {
			t.Errorf("Messages = %v", res.Messages)
		}
		if _, ok := res.Saved["post"]; ok {
			t.Error("post id must not be reported when the save failed")
		}
	})
}
