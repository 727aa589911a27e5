package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/blogsmith/model"
)

func TestResearchTopic(t *testing.T) {
	body := `{
		"summary": "goroutines are lightweight threads",
		"findings": [
			{"title": "Scheduler", "content": "M:N scheduling", "confidence": 0.9, "source": "go runtime docs"},
			{"title": "Stacks", "content": "growable stacks", "confidence": 0.85, "source": "go blog"}
		],
		"key_concepts": ["goroutine", "scheduler"]
	}`
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: body}}}
	research := NewResearch(NewLLM(mock, nil, nil), nil)

	findings, err := research.ResearchTopic(context.Background(), "goroutines", "runtime internals")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(findings.ID, "research_"))
	assert.Equal(t, "goroutines", findings.Topic)
	require.Len(t, findings.Findings, 2)
	assert.Equal(t, 0.9, findings.Findings[0].Confidence)
	assert.Equal(t, []string{"go runtime docs", "go blog"}, findings.Sources,
		"sources should be collected from findings when absent")

	prompt := lastMessage(mock.Calls[0])
	assert.Contains(t, prompt, "goroutines")
	assert.Contains(t, prompt, "runtime internals")
}

func TestResearchTopicKeepsExplicitFields(t *testing.T) {
	body := `{"id": "research_custom", "sources": ["explicit source"], "findings": []}`
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: body}}}
	research := NewResearch(NewLLM(mock, nil, nil), nil)

	findings, err := research.ResearchTopic(context.Background(), "topic", "")
	require.NoError(t, err)
	assert.Equal(t, "research_custom", findings.ID)
	assert.Equal(t, []string{"explicit source"}, findings.Sources)
}

func TestExplainConcept(t *testing.T) {
	body := `{"explanation": "channels are typed pipes", "examples": ["ch := make(chan int)"], "analogies": ["conveyor belt"]}`
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: body}}}
	research := NewResearch(NewLLM(mock, nil, nil), nil)

	out, err := research.ExplainConcept(context.Background(), "channels", "beginner")
	require.NoError(t, err)
	assert.Equal(t, "channels", out.Concept)
	assert.Equal(t, "beginner", out.Mode)
	assert.Equal(t, "channels are typed pipes", out.Explanation)
	require.Len(t, out.Examples, 1)
}
