// Package repository persists finished blog posts, research sessions and
// knowledge documents in a relational database. Both the pure-Go sqlite
// driver and MySQL are supported.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("repository: not found")

// DB bundles the repositories over one connection pool.
type DB struct {
	conn *sql.DB

	BlogPosts          *BlogPostRepo
	ResearchSessions   *ResearchSessionRepo
	KnowledgeDocuments *KnowledgeDocumentRepo
}

// Open connects with the given driver ("sqlite" or "mysql") and DSN and
// runs migrations.
func Open(driver, dsn string) (*DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("repository: enable WAL: %w", err)
		}
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	db.BlogPosts = &BlogPostRepo{conn: conn}
	db.ResearchSessions = &ResearchSessionRepo{conn: conn}
	db.KnowledgeDocuments = &KnowledgeDocumentRepo{conn: conn}
	return db, nil
}

func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS blog_posts (
			id VARCHAR(64) PRIMARY KEY,
			title TEXT NOT NULL,
			slug VARCHAR(128) NOT NULL UNIQUE,
			content TEXT NOT NULL,
			outline TEXT,
			niche VARCHAR(128),
			target_audience VARCHAR(64),
			meta_description TEXT,
			keywords TEXT,
			status VARCHAR(32) NOT NULL DEFAULT 'draft',
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS research_sessions (
			id VARCHAR(64) PRIMARY KEY,
			topic TEXT NOT NULL,
			findings TEXT NOT NULL,
			sources TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_documents (
			id VARCHAR(64) PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			doc_type VARCHAR(32),
			source TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.conn.Exec(s); err != nil {
			return fmt.Errorf("repository: migrate: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}
