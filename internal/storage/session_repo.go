package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks github.com/badi-al-zaman/ragchat/internal/storage SessionStore,Turn

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines the interface for session and message storage.
type SessionStore interface {
	// CreateSession creates a new session owned by userID.
	CreateSession(ctx context.Context, userID, title string) (*SessionRecord, error)
	// GetSession gets a session without its messages. Returns ErrNotFound if unknown.
	GetSession(ctx context.Context, sessionID string) (*SessionRecord, error)
	// GetFullSession gets a session with its messages ordered by creation.
	// Returns ErrNotFound if unknown.
	GetFullSession(ctx context.Context, sessionID string) (*SessionRecord, error)
	// ListSessions returns up to limit sessions, most recently created first.
	ListSessions(ctx context.Context, limit int) ([]*SessionRecord, error)
	// DeleteSession deletes a session and, by cascade, its messages.
	// Returns ErrNotFound if unknown.
	DeleteSession(ctx context.Context, sessionID string) error
	// AppendMessage appends a single message outside any turn and bumps
	// the session's last_active_at. Returns ErrNotFound for unknown sessions.
	AppendMessage(ctx context.Context, sessionID string, data MessageData, tokens *int) (*MessageRecord, error)
	// BeginTurn opens a transactional scope for one conversational turn.
	// Either every message appended through the turn commits, or none do.
	// Returns ErrNotFound for unknown sessions.
	BeginTurn(ctx context.Context, sessionID string) (Turn, error)
}

// Turn is the transactional write scope of a single conversational turn.
// Appends are buffered in memory and flushed in one short write
// transaction at Commit: either every message of the turn becomes durable
// or none do, and the sqlite write lock is never held while a turn waits
// on the model, so turns on other sessions proceed concurrently.
type Turn interface {
	// AppendMessage validates and buffers a message within the turn.
	AppendMessage(ctx context.Context, data MessageData, tokens *int) (*MessageRecord, error)
	// Commit writes every buffered append in one transaction.
	Commit() error
	// Rollback discards every append of the turn. Calling Rollback after
	// Commit is a no-op, so it is safe to defer.
	Rollback() error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SessionRepo provides methods for session and message operations.
// It implements the SessionStore interface.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateSession creates a new session owned by userID.
func (r *SessionRepo) CreateSession(ctx context.Context, userID, title string) (*SessionRecord, error) {
	now := time.Now().UTC()
	session := &SessionRecord{
		SessionID:    uuid.New().String(),
		UserID:       userID,
		Title:        title,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (session_id, user_id, title, created_at, last_active_at) VALUES (?, ?, ?, ?, ?)",
		session.SessionID, session.UserID, session.Title,
		now.Format(timeFormat), now.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// GetSession gets a session without its messages.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	return getSession(ctx, r.db, sessionID)
}

func getSession(ctx context.Context, q execer, sessionID string) (*SessionRecord, error) {
	var session SessionRecord
	var createdAt, lastActiveAt string

	err := q.QueryRowContext(ctx,
		"SELECT session_id, user_id, title, created_at, last_active_at FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&session.SessionID, &session.UserID, &session.Title, &createdAt, &lastActiveAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if session.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if session.LastActiveAt, err = time.Parse(timeFormat, lastActiveAt); err != nil {
		return nil, fmt.Errorf("failed to parse last_active_at timestamp: %w", err)
	}

	return &session, nil
}

// GetFullSession gets a session with its messages ordered by creation.
func (r *SessionRepo) GetFullSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	session, err := getSession(ctx, r.db, sessionID)
	if err != nil {
		return nil, err
	}

	// rowid breaks ties between messages created in the same nanosecond,
	// preserving insertion order.
	rows, err := r.db.QueryContext(ctx,
		"SELECT message_id, session_id, data, tokens, created_at FROM messages WHERE session_id = ? ORDER BY created_at, rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var msg MessageRecord
		var dataJSON, createdAt string
		var tokens sql.NullInt64

		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &dataJSON, &tokens, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if err := json.Unmarshal([]byte(dataJSON), &msg.Data); err != nil {
			return nil, fmt.Errorf("failed to decode message data: %w", err)
		}
		if tokens.Valid {
			n := int(tokens.Int64)
			msg.Tokens = &n
		}
		if msg.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse message created_at timestamp: %w", err)
		}

		session.Messages = append(session.Messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return session, nil
}

// ListSessions returns up to limit sessions, most recently created first.
func (r *SessionRepo) ListSessions(ctx context.Context, limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT session_id, user_id, title, created_at, last_active_at FROM sessions ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []*SessionRecord
	for rows.Next() {
		var session SessionRecord
		var createdAt, lastActiveAt string

		if err := rows.Scan(&session.SessionID, &session.UserID, &session.Title, &createdAt, &lastActiveAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if session.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		if session.LastActiveAt, err = time.Parse(timeFormat, lastActiveAt); err != nil {
			return nil, fmt.Errorf("failed to parse last_active_at timestamp: %w", err)
		}

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// DeleteSession deletes a session and, by cascade, its messages.
func (r *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendMessage appends a single message outside any turn.
func (r *SessionRepo) AppendMessage(ctx context.Context, sessionID string, data MessageData, tokens *int) (*MessageRecord, error) {
	return appendMessage(ctx, r.db, sessionID, data, tokens)
}

func appendMessage(ctx context.Context, q execer, sessionID string, data MessageData, tokens *int) (*MessageRecord, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message data: %w", err)
	}

	// Verify the session exists before inserting so unknown sessions
	// surface as ErrNotFound rather than a foreign key violation.
	if _, err := getSession(ctx, q, sessionID); err != nil {
		return nil, err
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message data: %w", err)
	}

	now := time.Now().UTC()
	msg := &MessageRecord{
		MessageID: uuid.New().String(),
		SessionID: sessionID,
		Data:      data,
		Tokens:    tokens,
		CreatedAt: now,
	}

	var tokensVal any
	if tokens != nil {
		tokensVal = *tokens
	}

	_, err = q.ExecContext(ctx,
		"INSERT INTO messages (message_id, session_id, data, tokens, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.MessageID, sessionID, string(dataJSON), tokensVal, now.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	// Every append marks the session active.
	_, err = q.ExecContext(ctx,
		"UPDATE sessions SET last_active_at = ? WHERE session_id = ?",
		now.Format(timeFormat), sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update session activity: %w", err)
	}

	return msg, nil
}

// BeginTurn opens a buffered transactional scope for one conversational turn.
func (r *SessionRepo) BeginTurn(ctx context.Context, sessionID string) (Turn, error) {
	if _, err := getSession(ctx, r.db, sessionID); err != nil {
		return nil, err
	}
	return &sqlTurn{db: r.db, sessionID: sessionID}, nil
}

// sqlTurn implements Turn. Messages are validated and timestamped as they
// are appended but only written at Commit, so no transaction stays open
// across the turn's model and retrieval calls.
type sqlTurn struct {
	db        *sql.DB
	sessionID string
	pending   []*MessageRecord
	done      bool
}

func (t *sqlTurn) AppendMessage(ctx context.Context, data MessageData, tokens *int) (*MessageRecord, error) {
	if t.done {
		return nil, fmt.Errorf("turn already finished")
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message data: %w", err)
	}

	msg := &MessageRecord{
		MessageID: uuid.New().String(),
		SessionID: t.sessionID,
		Data:      data,
		Tokens:    tokens,
		CreatedAt: time.Now().UTC(),
	}
	t.pending = append(t.pending, msg)
	return msg, nil
}

func (t *sqlTurn) Commit() error {
	if t.done {
		return fmt.Errorf("turn already finished")
	}
	t.done = true
	if len(t.pending) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The session may have been deleted while the turn was in flight.
	if _, err := getSession(ctx, tx, t.sessionID); err != nil {
		return err
	}

	for _, msg := range t.pending {
		dataJSON, err := json.Marshal(msg.Data)
		if err != nil {
			return fmt.Errorf("failed to encode message data: %w", err)
		}

		var tokensVal any
		if msg.Tokens != nil {
			tokensVal = *msg.Tokens
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (message_id, session_id, data, tokens, created_at) VALUES (?, ?, ?, ?, ?)",
			msg.MessageID, msg.SessionID, string(dataJSON), tokensVal, msg.CreatedAt.Format(timeFormat),
		); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	last := t.pending[len(t.pending)-1]
	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET last_active_at = ? WHERE session_id = ?",
		last.CreatedAt.Format(timeFormat), t.sessionID,
	); err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}

func (t *sqlTurn) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.pending = nil
	return nil
}
