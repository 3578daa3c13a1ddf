package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventReply answers a client command; ID carries the correlation value.
	EventReply EventKind = iota
	// EventRoster delivers the full roster after a presence change.
	EventRoster
	// EventMessageDelivered pushes a persisted message to its recipient.
	EventMessageDelivered
	// EventNotification pushes a lightweight new-message notification.
	EventNotification
)

// JoinResult is the successful reply payload for a join command.
type JoinResult struct {
	Nickname string
	Roster   []string
}

// Notification is the lightweight push sent alongside a delivered message.
type Notification struct {
	From      string
	Preview   string
	Kind      MessageKind
	Timestamp time.Time
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind

	// ID correlates an EventReply with the command that caused it.
	ID uint64

	Join         *JoinResult
	Message      *Message
	Messages     []*Message
	Roster       []string
	Notification *Notification
	Err          *CoreError
}

// replyEvent builds a successful or failed reply for a command ID.
func replyEvent(id uint64, err *CoreError) *Event {
	return &Event{Kind: EventReply, ID: id, Err: err}
}
