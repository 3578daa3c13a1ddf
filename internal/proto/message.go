package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client. ID is a
// client-chosen correlation value echoed back on the reply.
type Inbound struct {
	ID   uint64          `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoin        = "join"
	InboundTypeSend        = "send"
	InboundTypeLoadHistory = "load_history"
	InboundTypeMarkRead    = "mark_read"

	OutboundTypeReply = "reply"
	OutboundTypeEvent = "event"

	EventNameRoster       = "roster"
	EventNameMessage      = "message"
	EventNameNotification = "notification"
)

// JoinData claims a nickname for the connection.
type JoinData struct {
	Nickname string `json:"nickname"`
}

// LocationData is the payload for location messages.
type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// SendData is an outbound one-to-one message from the client. Payload
// fields are kind-dependent.
type SendData struct {
	To       string        `json:"to"`
	Kind     string        `json:"kind,omitempty"`
	Content  string        `json:"content,omitempty"`
	FileURL  string        `json:"fileUrl,omitempty"`
	FileName string        `json:"fileName,omitempty"`
	FileSize int64         `json:"fileSize,omitempty"`
	MimeType string        `json:"mimeType,omitempty"`
	Location *LocationData `json:"location,omitempty"`
}

// LoadHistoryData requests the conversation with a counterpart.
type LoadHistoryData struct {
	Counterpart string `json:"counterpart"`
	Limit       int    `json:"limit,omitempty"`
}

// MarkReadData marks messages from a counterpart as read. No reply.
type MarkReadData struct {
	From string `json:"from"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	ID    uint64 `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// JoinResult confirms a successful join with a roster snapshot.
type JoinResult struct {
	Nickname string   `json:"nickname"`
	Roster   []string `json:"roster"`
}

// WireMessage is the full message record as seen on the wire.
type WireMessage struct {
	ID       int64         `json:"id"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Kind     string        `json:"kind"`
	Content  string        `json:"content,omitempty"`
	FileURL  string        `json:"fileUrl,omitempty"`
	FileName string        `json:"fileName,omitempty"`
	FileSize int64         `json:"fileSize,omitempty"`
	MimeType string        `json:"mimeType,omitempty"`
	Location *LocationData `json:"location,omitempty"`
	Read     bool          `json:"read"`
	TS       int64         `json:"ts"`
}

// MessageList is the reply payload for load_history, oldest first.
type MessageList struct {
	Messages []WireMessage `json:"messages"`
}

// NotificationData is the lightweight new-message push.
type NotificationData struct {
	From    string `json:"from"`
	Preview string `json:"preview"`
	Kind    string `json:"kind"`
	TS      int64  `json:"ts"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
