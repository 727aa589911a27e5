package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dshills/blogsmith/types"
)

// Research performs topic research backed by the LLM and, when
// available, the knowledge base.
type Research struct {
	llm *LLM
	rag *RAG

	// Depth describes how thorough research should be. Defaults to
	// "comprehensive".
	Depth string
}

// NewResearch builds the service. rag may be nil.
func NewResearch(llm *LLM, rag *RAG) *Research {
	return &Research{llm: llm, rag: rag, Depth: "comprehensive"}
}

// ResearchTopic gathers structured findings on a topic. Knowledge-base
// context is included in the prompt when the RAG layer has relevant
// material.
func (r *Research) ResearchTopic(ctx context.Context, topic, niche string) (*types.ResearchFindings, error) {
	var kbContext string
	if r.rag != nil {
		kbContext = r.rag.ContextForQuery(ctx, topic)
	}

	raw, err := r.llm.GenerateStructured(ctx, researchPrompt(topic, niche, r.Depth, kbContext), researchSystem)
	if err != nil {
		return nil, fmt.Errorf("research topic %q: %w", topic, err)
	}

	var findings types.ResearchFindings
	if err := decodeInto(raw, &findings); err != nil {
		return nil, fmt.Errorf("research topic %q: decode: %w", topic, err)
	}
	if findings.ID == "" {
		findings.ID = "research_" + randomHex(6)
	}
	findings.Topic = topic
	if len(findings.Sources) == 0 {
		for _, f := range findings.Findings {
			if f.Source != "" {
				findings.Sources = append(findings.Sources, f.Source)
			}
		}
	}
	return &findings, nil
}

// ExplainConcept produces a structured explanation of one concept in the
// requested style (for example "beginner" or "analogy-heavy").
func (r *Research) ExplainConcept(ctx context.Context, concept, mode string) (*types.Explanation, error) {
	if mode == "" {
		mode = "clear and practical"
	}
	raw, err := r.llm.GenerateStructured(ctx, explainPrompt(concept, mode), explainSystem)
	if err != nil {
		return nil, fmt.Errorf("explain %q: %w", concept, err)
	}
	var out types.Explanation
	if err := decodeInto(raw, &out); err != nil {
		return nil, fmt.Errorf("explain %q: decode: %w", concept, err)
	}
	out.Concept = concept
	out.Mode = mode
	return &out, nil
}

// decodeInto converts a generic JSON map into a typed struct by
// round-tripping through encoding/json.
func decodeInto(raw map[string]interface{}, dest interface{}) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dest)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "000000000000"[:n*2]
	}
	return hex.EncodeToString(buf)
}
