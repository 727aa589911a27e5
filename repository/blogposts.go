package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Blog post lifecycle statuses.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// BlogPost is one stored post.
type BlogPost struct {
	ID              string
	Title           string
	Slug            string
	Content         string
	Outline         string
	Niche           string
	TargetAudience  string
	MetaDescription string
	Keywords        []string
	Status          string
	WordCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BlogPostParams holds the fields for a new post. Status defaults to
// draft; Outline, when set, is stored as JSON.
type BlogPostParams struct {
	Title           string
	Content         string
	Outline         interface{}
	Niche           string
	TargetAudience  string
	MetaDescription string
	Keywords        []string
	WordCount       int
	Status          string
}

// BlogPostRepo stores finished blog posts.
type BlogPostRepo struct {
	conn *sql.DB
}

// Slugify lowercases the title, replaces spaces with hyphens, drops
// colons and truncates to 100 characters.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, ":", "")
	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}

// Create inserts a new post and returns its generated id and slug.
func (r *BlogPostRepo) Create(ctx context.Context, p BlogPostParams) (id, slug string, err error) {
	id = uuid.NewString()
	slug = Slugify(p.Title)
	kw, err := json.Marshal(p.Keywords)
	if err != nil {
		return "", "", err
	}
	var outline string
	if p.Outline != nil {
		raw, err := json.Marshal(p.Outline)
		if err != nil {
			return "", "", err
		}
		outline = string(raw)
	}
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	now := time.Now().UTC()
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO blog_posts (id, title, slug, content, outline, niche, target_audience, meta_description, keywords, status, word_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Title, slug, p.Content, outline, p.Niche, p.TargetAudience, p.MetaDescription, string(kw), status, p.WordCount, now, now)
	if err != nil {
		return "", "", err
	}
	return id, slug, nil
}

// GetByID fetches one post.
func (r *BlogPostRepo) GetByID(ctx context.Context, id string) (*BlogPost, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetBySlug fetches one post by its slug.
func (r *BlogPostRepo) GetBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	return r.getWhere(ctx, "slug = ?", slug)
}

func (r *BlogPostRepo) getWhere(ctx context.Context, where string, arg interface{}) (*BlogPost, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT id, title, slug, content, outline, niche, target_audience, meta_description, keywords, status, word_count, created_at, updated_at
		 FROM blog_posts WHERE `+where, arg)
	return scanPost(row)
}

func scanPost(row *sql.Row) (*BlogPost, error) {
	var p BlogPost
	var kw string
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Outline, &p.Niche, &p.TargetAudience,
		&p.MetaDescription, &kw, &p.Status, &p.WordCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if kw != "" {
		_ = json.Unmarshal([]byte(kw), &p.Keywords)
	}
	return &p, nil
}

// List returns recent posts, newest first, optionally filtered by status.
func (r *BlogPostRepo) List(ctx context.Context, status string, limit int) ([]BlogPost, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, title, slug, content, outline, niche, target_audience, meta_description, keywords, status, word_count, created_at, updated_at
		 FROM blog_posts`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		var p BlogPost
		var kw string
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Outline, &p.Niche, &p.TargetAudience,
			&p.MetaDescription, &kw, &p.Status, &p.WordCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if kw != "" {
			_ = json.Unmarshal([]byte(kw), &p.Keywords)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdateStatus moves a post through its lifecycle.
func (r *BlogPostRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE blog_posts SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
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

// Delete removes a post.
func (r *BlogPostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
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
