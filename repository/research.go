package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ResearchSession is one stored research pass over a topic. Findings is
// the raw structured payload as JSON.
type ResearchSession struct {
	ID        string
	Topic     string
	Findings  json.RawMessage
	Sources   []string
	CreatedAt time.Time
}

// ResearchSessionRepo stores research results for later reuse.
type ResearchSessionRepo struct {
	conn *sql.DB
}

// Create inserts a session and returns its generated id.
func (r *ResearchSessionRepo) Create(ctx context.Context, topic string, findings interface{}, sources []string) (string, error) {
	id := uuid.NewString()
	raw, err := json.Marshal(findings)
	if err != nil {
		return "", err
	}
	src, err := json.Marshal(sources)
	if err != nil {
		return "", err
	}
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO research_sessions (id, topic, findings, sources, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, topic, string(raw), string(src), time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetByID fetches one session.
func (r *ResearchSessionRepo) GetByID(ctx context.Context, id string) (*ResearchSession, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT id, topic, findings, sources, created_at FROM research_sessions WHERE id = ?`, id)
	var s ResearchSession
	var findings, sources string
	err := row.Scan(&s.ID, &s.Topic, &findings, &sources, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Findings = json.RawMessage(findings)
	if sources != "" {
		_ = json.Unmarshal([]byte(sources), &s.Sources)
	}
	return &s, nil
}

// ListByTopic returns sessions whose topic contains the query string,
// newest first.
func (r *ResearchSessionRepo) ListByTopic(ctx context.Context, topic string, limit int) ([]ResearchSession, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, topic, findings, sources, created_at FROM research_sessions
		 WHERE topic LIKE ? ORDER BY created_at DESC LIMIT ?`,
		"%"+topic+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []ResearchSession
	for rows.Next() {
		var s ResearchSession
		var findings, sources string
		if err := rows.Scan(&s.ID, &s.Topic, &findings, &sources, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Findings = json.RawMessage(findings)
		if sources != "" {
			_ = json.Unmarshal([]byte(sources), &s.Sources)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
