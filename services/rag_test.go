package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/blogsmith/model"
	"github.com/dshills/blogsmith/vector"
)

// memVector is an in-memory VectorStore for tests. Query returns the
// stored hits verbatim.
type memVector struct {
	docs    map[string]vector.Document
	hits    []vector.QueryHit
	failAll bool
}

func newMemVector() *memVector {
	return &memVector{docs: map[string]vector.Document{}}
}

func (m *memVector) Add(_ context.Context, docs []vector.Document) error {
	if m.failAll {
		return errors.New("store down")
	}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return nil
}

func (m *memVector) Query(_ context.Context, _ []float32, _ int, _ map[string]string) ([]vector.QueryHit, error) {
	if m.failAll {
		return nil, errors.New("store down")
	}
	return m.hits, nil
}

func (m *memVector) GetByMetadata(_ context.Context, where map[string]string) ([]vector.Document, error) {
	if m.failAll {
		return nil, errors.New("store down")
	}
	var out []vector.Document
	for _, d := range m.docs {
		match := true
		for k, v := range where {
			if d.Metadata[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memVector) Delete(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.docs, id)
	}
	return nil
}

func testRAG(t *testing.T, store VectorStore) *RAG {
	t.Helper()
	embedder := &model.MockEmbedder{Vector: []float32{0.1, 0.2}}
	return NewRAG(NewLLM(nil, embedder, nil), store)
}

func TestAddDocumentChunksAndEmbeds(t *testing.T) {
	store := newMemVector()
	rag := testRAG(t, store)

	content := strings.Repeat("Go routines are cheap. ", 120) // forces multiple chunks
	n, err := rag.AddDocument(context.Background(), "doc-1", "Goroutines", content, map[string]string{"doc_type": "guide"})
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Len(t, store.docs, n)

	first, ok := store.docs["doc-1_chunk_0"]
	require.True(t, ok)
	assert.Equal(t, "doc-1", first.Metadata["document_id"])
	assert.Equal(t, "Goroutines", first.Metadata["title"])
	assert.Equal(t, "guide", first.Metadata["doc_type"])
	assert.Equal(t, []float32{0.1, 0.2}, first.Embedding)
}

func TestSearchSimilarity(t *testing.T) {
	store := newMemVector()
	store.hits = []vector.QueryHit{
		{ID: "a", Content: "close match", Distance: 0.2, Metadata: map[string]string{"title": "A"}},
		{ID: "b", Content: "far match", Distance: 0.9},
	}
	rag := testRAG(t, store)

	results, err := rag.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.8, results[0].Score, 1e-9)
	assert.InDelta(t, 0.1, results[1].Score, 1e-9)
	assert.Equal(t, "A", results[0].Title)
}

func TestContextForQueryFiltersByThreshold(t *testing.T) {
	store := newMemVector()
	store.hits = []vector.QueryHit{
		{ID: "a", Content: "relevant chunk", Distance: 0.2},   // score 0.8
		{ID: "b", Content: "irrelevant chunk", Distance: 0.7}, // score 0.3
	}
	rag := testRAG(t, store)

	ctx := rag.ContextForQuery(context.Background(), "query")
	assert.Contains(t, ctx, "relevant chunk")
	assert.NotContains(t, ctx, "irrelevant chunk")
}

func TestContextForQueryDegrades(t *testing.T) {
	store := newMemVector()
	store.failAll = true
	rag := testRAG(t, store)

	assert.Empty(t, rag.ContextForQuery(context.Background(), "query"))

	nilRAG := testRAG(t, nil)
	assert.Empty(t, nilRAG.ContextForQuery(context.Background(), "query"))
}

func TestDeleteDocument(t *testing.T) {
	store := newMemVector()
	rag := testRAG(t, store)

	_, err := rag.AddDocument(context.Background(), "doc-1", "T", strings.Repeat("sentence one. ", 100), nil)
	require.NoError(t, err)
	_, err = rag.AddDocument(context.Background(), "doc-2", "U", "short doc", nil)
	require.NoError(t, err)

	require.NoError(t, rag.DeleteDocument(context.Background(), "doc-1"))
	remaining, err := store.GetByMetadata(context.Background(), map[string]string{"document_id": "doc-2"})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	gone, err := store.GetByMetadata(context.Background(), map[string]string{"document_id": "doc-1"})
	require.NoError(t, err)
	assert.Empty(t, gone)
}
