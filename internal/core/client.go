package core

// Client is one live transport session as seen by the core layer. A client
// is unauthenticated until a join succeeds; the hub owns the nickname
// association and is the only goroutine that reads or writes it.
type Client struct {
	// Token is the opaque session token identifying this connection.
	Token string

	// Events carries hub-emitted events and replies to the transport
	// write loop.
	Events chan *Event

	// nickname is set by the hub on successful join, cleared on leave.
	// Hub-goroutine-only.
	nickname string
}

// NewClient constructs an unauthenticated client with a buffered event
// channel.
func NewClient(token string) *Client {
	return &Client{
		Token:  token,
		Events: make(chan *Event, 32),
	}
}

// deliver enqueues an event without blocking the hub. Returns false when
// the client's buffer is full (slow consumer) and the event was dropped.
func (c *Client) deliver(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
