package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/dmchat-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS identities (
	nickname      TEXT PRIMARY KEY,
	session_token TEXT,
	online        INTEGER NOT NULL DEFAULT 0,
	last_seen     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	sender     TEXT NOT NULL,
	recipient  TEXT NOT NULL,
	kind       TEXT NOT NULL DEFAULT 'text',
	content    TEXT NOT NULL DEFAULT '',
	file_url   TEXT,
	file_name  TEXT,
	file_size  INTEGER,
	mime_type  TEXT,
	latitude   REAL,
	longitude  REAL,
	is_read    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender, recipient, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(recipient, is_read);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after
// applying the schema. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== IdentityStore implementation ====

// UpsertOnline creates or updates an identity, binding the session token.
func (s *SQLiteStore) UpsertOnline(ctx context.Context, nickname, sessionToken string) (*store.Identity, error) {
	query := `
		INSERT INTO identities (nickname, session_token, online, last_seen)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(nickname) DO UPDATE SET
			session_token = excluded.session_token,
			online        = 1,
			last_seen     = excluded.last_seen
	`
	if _, err := s.db.ExecContext(ctx, query, nickname, sessionToken, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert identity: %w", err)
	}

	return s.GetIdentity(ctx, nickname)
}

// SetOffline clears the session token and marks the identity offline.
func (s *SQLiteStore) SetOffline(ctx context.Context, nickname string) error {
	query := `
		UPDATE identities
		SET online = 0, session_token = NULL, last_seen = ?
		WHERE nickname = ?
	`
	if _, err := s.db.ExecContext(ctx, query, time.Now().UTC(), nickname); err != nil {
		return fmt.Errorf("set identity offline: %w", err)
	}
	return nil
}

// GetIdentity retrieves an identity by nickname.
func (s *SQLiteStore) GetIdentity(ctx context.Context, nickname string) (*store.Identity, error) {
	query := `
		SELECT nickname, COALESCE(session_token, ''), online, last_seen, created_at
		FROM identities
		WHERE nickname = ?
	`
	var ident store.Identity
	err := s.db.QueryRowContext(ctx, query, nickname).Scan(
		&ident.Nickname,
		&ident.SessionToken,
		&ident.Online,
		&ident.LastSeen,
		&ident.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query identity: %w", err)
	}

	return &ident, nil
}

// MarkAllOffline forces every identity offline and clears session tokens.
func (s *SQLiteStore) MarkAllOffline(ctx context.Context) (int64, error) {
	query := `
		UPDATE identities
		SET online = 0, session_token = NULL, last_seen = ?
		WHERE online = 1 OR session_token IS NOT NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark all offline: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and sets its ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (sender, recipient, kind, content, file_url, file_name, file_size, mime_type, latitude, longitude, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.From,
		msg.To,
		msg.Kind,
		msg.Content,
		nullString(msg.FileURL),
		nullString(msg.FileName),
		nullInt(msg.FileSize),
		nullString(msg.MimeType),
		msg.Latitude,
		msg.Longitude,
		msg.Read,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id

	return nil
}

// ListConversation retrieves up to limit messages between two identities,
// newest first.
func (s *SQLiteStore) ListConversation(ctx context.Context, a, b string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, sender, recipient, kind, content,
		       COALESCE(file_url, ''), COALESCE(file_name, ''), COALESCE(file_size, 0), COALESCE(mime_type, ''),
		       latitude, longitude, is_read, created_at
		FROM messages
		WHERE (sender = ? AND recipient = ?) OR (sender = ? AND recipient = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, a, b, b, a, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.From,
			&msg.To,
			&msg.Kind,
			&msg.Content,
			&msg.FileURL,
			&msg.FileName,
			&msg.FileSize,
			&msg.MimeType,
			&msg.Latitude,
			&msg.Longitude,
			&msg.Read,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// MarkRead marks all unread messages from one identity to another as read.
func (s *SQLiteStore) MarkRead(ctx context.Context, from, to string) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = 1
		WHERE sender = ? AND recipient = ? AND is_read = 0
	`
	result, err := s.db.ExecContext(ctx, query, from, to)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// CountUnread returns the number of unread messages addressed to an identity.
func (s *SQLiteStore) CountUnread(ctx context.Context, to string) (int64, error) {
	query := `SELECT COUNT(*) FROM messages WHERE recipient = ? AND is_read = 0`

	var count int64
	if err := s.db.QueryRowContext(ctx, query, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
