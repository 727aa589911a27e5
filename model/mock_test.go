package model

import (
	"context"
	"errors"
	"testing"
)

func TestMockChatModelSequencesResponses(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "one"}, {Text: "two"}}}
	ctx := context.Background()

	for _, want := range []string{"one", "two", "two"} {
		out, err := mock.Chat(ctx, ChatRequest{})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if out.Text != want {
			t.Errorf("Text = %q, want %q", out.Text, want)
		}
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", mock.CallCount())
	}
}

func TestMockChatModelError(t *testing.T) {
	boom := errors.New("boom")
	mock := &MockChatModel{Err: boom}

	if _, err := mock.Chat(context.Background(), ChatRequest{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestMockChatModelHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &MockChatModel{Responses: []ChatOut{{Text: "never"}}}
	if _, err := mock.Chat(ctx, ChatRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 0 {
		t.Error("cancelled calls must not be recorded")
	}
}

func TestMockEmbedderCopiesVector(t *testing.T) {
	mock := &MockEmbedder{Vector: []float32{0.1, 0.2}}

	v, err := mock.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	v[0] = 9
	if mock.Vector[0] != 0.1 {
		t.Error("Embed must return a copy, not the shared slice")
	}
	if len(mock.Texts) != 1 || mock.Texts[0] != "text" {
		t.Errorf("Texts = %v", mock.Texts)
	}
}
