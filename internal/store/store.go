package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Identity is the durable record for a nickname. The online flag and
// session token are advisory: the in-memory presence table is the
// liveness authority and overwrites stale state on reconnect.
type Identity struct {
	Nickname     string
	SessionToken string
	Online       bool
	LastSeen     time.Time
	CreatedAt    time.Time
}

// Message is a persisted one-to-one chat message. Immutable except for
// the Read flag.
type Message struct {
	ID        int64
	From      string
	To        string
	Kind      string
	Content   string
	FileURL   string
	FileName  string
	FileSize  int64
	MimeType  string
	Latitude  *float64
	Longitude *float64
	Read      bool
	CreatedAt time.Time
}

// IdentityStore handles identity persistence.
type IdentityStore interface {
	// UpsertOnline creates or updates the identity record, binding the
	// session token, setting online and refreshing last_seen.
	UpsertOnline(ctx context.Context, nickname, sessionToken string) (*Identity, error)

	// SetOffline clears the session token, sets online=false and
	// refreshes last_seen.
	SetOffline(ctx context.Context, nickname string) error

	// GetIdentity retrieves an identity by nickname. Returns ErrNotFound
	// if no record exists.
	GetIdentity(ctx context.Context, nickname string) (*Identity, error)

	// MarkAllOffline forces every record offline and clears session
	// tokens. Run at startup to eliminate stale state from a prior crash.
	MarkAllOffline(ctx context.Context) (int64, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and sets its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListConversation retrieves up to limit messages between two
	// identities (either direction), newest first.
	ListConversation(ctx context.Context, a, b string, limit int) ([]*Message, error)

	// MarkRead marks all unread messages from one identity to another as
	// read and returns the number of rows updated.
	MarkRead(ctx context.Context, from, to string) (int64, error)

	// CountUnread returns the number of unread messages addressed to the
	// given identity.
	CountUnread(ctx context.Context, to string) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	IdentityStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
