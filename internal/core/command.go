package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin claims a nickname for the session.
	CommandJoin CommandKind = iota
	// CommandSend delivers a message to another connected identity.
	CommandSend
	// CommandLoadHistory fetches the conversation with a counterpart.
	CommandLoadHistory
	// CommandMarkRead marks messages from a counterpart as read.
	CommandMarkRead
)

// JoinRequest asks to bind a nickname to the issuing session.
type JoinRequest struct {
	Nickname string
}

// SendRequest carries an outbound message, one payload group per kind.
type SendRequest struct {
	To       string
	Kind     MessageKind
	Content  string
	FileURL  string
	FileName string
	FileSize int64
	MimeType string
	Location *Location
}

// HistoryRequest asks for the most recent messages with a counterpart.
type HistoryRequest struct {
	Counterpart string
	Limit       int
}

// MarkReadRequest marks messages from a counterpart as read. Fire-and-forget.
type MarkReadRequest struct {
	From string
}

// Command represents an action requested by a client. ID is the
// transport-supplied correlation value echoed back on the reply event.
type Command struct {
	Kind     CommandKind
	ID       uint64
	Join     *JoinRequest
	Send     *SendRequest
	History  *HistoryRequest
	MarkRead *MarkReadRequest

	client *Client
}
