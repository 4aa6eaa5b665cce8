// File path: internal/session/store.go
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"

	"github.com/quillon/docchat/internal/flow"
	"github.com/quillon/docchat/internal/llm"
)

// ErrSessionNotFound reports an unknown session id.
var ErrSessionNotFound = errors.New("session: not found")

// Store persists chat sessions in SQLite: one row per session, its message
// history, and the latest conversation-state snapshot.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at path, migrating
// the schema on first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session db path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session db path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var schemaStatements = []string{
	`PRAGMA journal_mode = WAL;`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		flow_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);`,
	`CREATE TABLE IF NOT EXISTS flow_states (
		session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// Create starts a new session, optionally bound to a conversation flow,
// and returns its id.
func (s *Store) Create(ctx context.Context, flowID string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, flow_id, created_at) VALUES (?, ?, ?)`,
		id, strings.TrimSpace(flowID), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// FlowID returns the flow a session is bound to, empty for plain chat.
func (s *Store) FlowID(ctx context.Context, sessionID string) (string, error) {
	var flowID string
	err := s.db.GetContext(ctx, &flowID, `SELECT flow_id FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	return flowID, nil
}

// AppendMessage records one chat message in a session's history.
func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, strings.ToLower(role), content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

type messageRow struct {
	Role    string `db:"role"`
	Content string `db:"content"`
}

// History returns the most recent limit messages in chronological order.
// limit <= 0 returns the full history.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]llm.Message, error) {
	query := `SELECT role, content FROM messages WHERE session_id = ? ORDER BY id`
	args := []interface{}{sessionID}
	if limit > 0 {
		query = `SELECT role, content FROM (
			SELECT id, role, content FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		args = append(args, limit)
	}
	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	messages := make([]llm.Message, len(rows))
	for i, row := range rows {
		messages[i] = llm.Message{Role: row.Role, Content: row.Content}
	}
	return messages, nil
}

// SaveState upserts the latest conversation-state snapshot for a session.
func (s *Store) SaveState(ctx context.Context, sessionID string, state *flow.State) error {
	if state == nil {
		return errors.New("state required")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO flow_states (session_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		sessionID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState restores the conversation-state snapshot for a session.
func (s *Store) LoadState(ctx context.Context, sessionID string) (*flow.State, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM flow_states WHERE session_id = ?`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	var state flow.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}
