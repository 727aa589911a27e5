package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/blogsmith/types"
	"github.com/dshills/blogsmith/vector"
)

// contextThreshold is the minimum similarity for a search hit to be
// included in generated context.
const contextThreshold = 0.5

// VectorStore is the slice of the vector client the RAG layer uses.
type VectorStore interface {
	Add(ctx context.Context, docs []vector.Document) error
	Query(ctx context.Context, embedding []float32, limit int, where map[string]string) ([]vector.QueryHit, error)
	GetByMetadata(ctx context.Context, where map[string]string) ([]vector.Document, error)
	Delete(ctx context.Context, ids []string) error
}

// RAG chunks, embeds and retrieves knowledge-base documents.
type RAG struct {
	llm   *LLM
	store VectorStore
}

// NewRAG builds the service. A nil store degrades every operation to a
// no-op so the pipeline keeps working without a vector database.
func NewRAG(llm *LLM, store VectorStore) *RAG {
	return &RAG{llm: llm, store: store}
}

// AddDocument chunks and embeds a document into the store. Returns the
// number of chunks written.
func (r *RAG) AddDocument(ctx context.Context, id, title, content string, metadata map[string]string) (int, error) {
	if r.store == nil {
		return 0, fmt.Errorf("rag: no vector store configured")
	}
	chunks := vector.Chunk(content, vector.DefaultChunkSize, vector.DefaultChunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]vector.Document, 0, len(chunks))
	for i, chunk := range chunks {
		emb, err := r.llm.EmbedText(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("rag: embed chunk %d: %w", i, err)
		}
		meta := map[string]string{
			"document_id": id,
			"title":       title,
			"chunk_index": fmt.Sprint(i),
		}
		for k, v := range metadata {
			meta[k] = v
		}
		docs = append(docs, vector.Document{
			ID:        fmt.Sprintf("%s_chunk_%d", id, i),
			Content:   chunk,
			Embedding: emb,
			Metadata:  meta,
		})
	}
	if err := r.store.Add(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Search returns the most similar chunks to the query. Similarity is
// 1 minus cosine distance.
func (r *RAG) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if r.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	emb, err := r.llm.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	hits, err := r.store.Query(ctx, emb, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("rag: query: %w", err)
	}
	results := make([]types.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.SearchResult{
			ID:       h.ID,
			Content:  h.Content,
			Title:    h.Metadata["title"],
			Score:    1 - h.Distance,
			Metadata: h.Metadata,
		})
	}
	return results, nil
}

// DeleteDocument removes all chunks for a document id.
func (r *RAG) DeleteDocument(ctx context.Context, id string) error {
	if r.store == nil {
		return nil
	}
	docs, err := r.store.GetByMetadata(ctx, map[string]string{"document_id": id})
	if err != nil {
		return fmt.Errorf("rag: find chunks for %s: %w", id, err)
	}
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return r.store.Delete(ctx, ids)
}

// ContextForQuery returns knowledge-base context relevant to the query,
// or empty when nothing scores above the threshold. Retrieval failures
// degrade to empty context rather than failing the caller.
func (r *RAG) ContextForQuery(ctx context.Context, query string) string {
	results, err := r.Search(ctx, query, 5)
	if err != nil {
		return ""
	}
	var parts []string
	for _, res := range results {
		if res.Score > contextThreshold {
			parts = append(parts, res.Content)
		}
	}
	return strings.Join(parts, "\n\n---\n\n")
}
