package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is one ingested source document. The vector store
// holds its chunked embeddings; this table keeps the canonical text.
type KnowledgeDocument struct {
	ID        string
	Title     string
	Content   string
	DocType   string
	Source    string
	CreatedAt time.Time
}

// KnowledgeDocumentRepo stores ingested knowledge-base documents.
type KnowledgeDocumentRepo struct {
	conn *sql.DB
}

// Create inserts a document and returns its generated id.
func (r *KnowledgeDocumentRepo) Create(ctx context.Context, title, content, docType, source string) (string, error) {
	id := uuid.NewString()
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO knowledge_documents (id, title, content, doc_type, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, content, docType, source, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetByID fetches one document.
func (r *KnowledgeDocumentRepo) GetByID(ctx context.Context, id string) (*KnowledgeDocument, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT id, title, content, doc_type, source, created_at FROM knowledge_documents WHERE id = ?`, id)
	var d KnowledgeDocument
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.DocType, &d.Source, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns recent documents, newest first, optionally filtered by type.
func (r *KnowledgeDocumentRepo) List(ctx context.Context, docType string, limit int) ([]KnowledgeDocument, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, title, content, doc_type, source, created_at FROM knowledge_documents`
	args := []interface{}{}
	if docType != "" {
		query += " WHERE doc_type = ?"
		args = append(args, docType)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []KnowledgeDocument
	for rows.Next() {
		var d KnowledgeDocument
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.DocType, &d.Source, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes a document.
func (r *KnowledgeDocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM knowledge_documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
