// Package vector talks to a Chroma server over its HTTP API and provides
// the text chunking used for knowledge-base ingestion.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal Chroma HTTP client scoped to one collection.
type Client struct {
	baseURL      string
	collection   string
	collectionID string
	httpClient   *http.Client
}

// Document is one stored chunk with its embedding and metadata.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// QueryHit is one nearest-neighbour result. Distance is cosine distance;
// similarity is 1 - distance.
type QueryHit struct {
	ID       string
	Content  string
	Distance float64
	Metadata map[string]string
}

// NewClient creates a client for the named collection, creating the
// collection on the server if it does not exist.
func NewClient(ctx context.Context, baseURL, collection string) (*Client, error) {
	c := &Client{
		baseURL:    baseURL,
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := c.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureCollection(ctx context.Context) error {
	body := map[string]interface{}{
		"name":          c.collection,
		"get_or_create": true,
		"metadata":      map[string]interface{}{"hnsw:space": "cosine"},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections", body, &resp); err != nil {
		return fmt.Errorf("vector: create collection %s: %w", c.collection, err)
	}
	c.collectionID = resp.ID
	return nil
}

// Add upserts documents into the collection.
func (c *Client) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	contents := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	metadatas := make([]map[string]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		contents[i] = d.Content
		embeddings[i] = d.Embedding
		metadatas[i] = d.Metadata
	}
	body := map[string]interface{}{
		"ids":        ids,
		"documents":  contents,
		"embeddings": embeddings,
		"metadatas":  metadatas,
	}
	path := fmt.Sprintf("/api/v1/collections/%s/add", c.collectionID)
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("vector: add %d documents: %w", len(docs), err)
	}
	return nil
}

// Query returns the limit nearest documents to the embedding, optionally
// filtered by metadata equality.
func (c *Client) Query(ctx context.Context, embedding []float32, limit int, where map[string]string) ([]QueryHit, error) {
	body := map[string]interface{}{
		"query_embeddings": [][]float32{embedding},
		"n_results":        limit,
		"include":          []string{"documents", "distances", "metadatas"},
	}
	if len(where) > 0 {
		body["where"] = where
	}
	var resp struct {
		IDs       [][]string            `json:"ids"`
		Documents [][]string            `json:"documents"`
		Distances [][]float64           `json:"distances"`
		Metadatas [][]map[string]string `json:"metadatas"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", c.collectionID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("vector: query: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	hits := make([]QueryHit, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		hit := QueryHit{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Content = resp.Documents[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = resp.Metadatas[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// GetByMetadata returns stored documents whose metadata matches where.
func (c *Client) GetByMetadata(ctx context.Context, where map[string]string) ([]Document, error) {
	body := map[string]interface{}{
		"where":   where,
		"include": []string{"documents", "metadatas"},
	}
	var resp struct {
		IDs       []string            `json:"ids"`
		Documents []string            `json:"documents"`
		Metadatas []map[string]string `json:"metadatas"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/get", c.collectionID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("vector: get: %w", err)
	}
	docs := make([]Document, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		d := Document{ID: id}
		if i < len(resp.Documents) {
			d.Content = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			d.Metadata = resp.Metadatas[i]
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Delete removes documents by id.
func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string]interface{}{"ids": ids}
	path := fmt.Sprintf("/api/v1/collections/%s/delete", c.collectionID)
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("vector: delete %d documents: %w", len(ids), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
