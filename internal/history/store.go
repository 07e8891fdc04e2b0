// Package history persists conversations: a markdown transcript per
// conversation plus a SQLite index used by `oca history`.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store indexes conversations in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// schema is applied in full at open; statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		model TEXT NOT NULL,
		project TEXT NOT NULL,
		transcript_path TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS turns (
		conversation_id TEXT NOT NULL,
		turn_number INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (conversation_id, turn_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_started
		ON conversations(started_at DESC)`,
}

// Open initializes the history database at the given path, creating parent
// directories and applying the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying history schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Conversation is one indexed conversation.
type Conversation struct {
	ID             string
	StartedAt      time.Time
	Model          string
	Project        string
	TranscriptPath string
}

// Turn is one message within a conversation.
type Turn struct {
	Number  int
	Role    string // "user" or "assistant"
	Content string
}

// CreateConversation registers a new conversation and returns its ID.
func (s *Store) CreateConversation(model, project, transcriptPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, model, project, transcript_path) VALUES (?, ?, ?, ?)`,
		id, model, project, transcriptPath,
	)
	if err != nil {
		return "", fmt.Errorf("creating conversation: %w", err)
	}
	return id, nil
}

// AddTurn records a turn. Duplicate turn numbers are silently skipped so
// re-syncing a transcript stays idempotent.
func (s *Store) AddTurn(conversationID string, number int, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO turns (conversation_id, turn_number, role, content) VALUES (?, ?, ?, ?)`,
		conversationID, number, role, content,
	)
	if err != nil {
		return fmt.Errorf("storing turn %d: %w", number, err)
	}
	return nil
}

// ListConversations returns the most recent conversations, newest first.
func (s *Store) ListConversations(limit int) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, model, project, transcript_path
		 FROM conversations ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.StartedAt, &c.Model, &c.Project, &c.TranscriptPath); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetConversation looks up one conversation by ID.
func (s *Store) GetConversation(id string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Conversation
	err := s.db.QueryRow(
		`SELECT id, started_at, model, project, transcript_path FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.StartedAt, &c.Model, &c.Project, &c.TranscriptPath)
	if err == sql.ErrNoRows {
		return c, fmt.Errorf("no conversation with id %s", id)
	}
	if err != nil {
		return c, fmt.Errorf("loading conversation: %w", err)
	}
	return c, nil
}

// GetTurns returns a conversation's turns in order.
func (s *Store) GetTurns(conversationID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT turn_number, role, content FROM turns
		 WHERE conversation_id = ? ORDER BY turn_number`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Number, &t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
