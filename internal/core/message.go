package core

import (
	"strings"
	"time"
)

// MessageKind discriminates which payload shape a message carries.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindFile     MessageKind = "file"
	KindAudio    MessageKind = "audio"
	KindLocation MessageKind = "location"
)

const (
	// MaxContentLength is the maximum length of text content.
	MaxContentLength = 1000
	// previewLength is how many runes of text go into a notification preview.
	previewLength = 30
)

// Known returns true for a recognized message kind.
func (k MessageKind) Known() bool {
	switch k {
	case KindText, KindImage, KindFile, KindAudio, KindLocation:
		return true
	}
	return false
}

// Location is an optional geographic payload for location messages.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Message is the domain model for a one-to-one chat message.
// Immutable once persisted except for the Read flag.
type Message struct {
	ID        int64
	From      string
	To        string
	Kind      MessageKind
	Content   string
	FileURL   string
	FileName  string
	FileSize  int64
	MimeType  string
	Location  *Location
	Read      bool
	CreatedAt time.Time
}

// NewMessage builds and validates a message from a send request. The
// timestamp is server-assigned by the hub at persist time.
func NewMessage(from string, req *SendRequest) (*Message, *CoreError) {
	kind := req.Kind
	if kind == "" {
		kind = KindText
	}
	if !kind.Known() {
		return nil, coreError(ErrCodeInvalidMessage, "unknown message kind")
	}

	msg := &Message{
		From: from,
		To:   req.To,
		Kind: kind,
	}

	switch kind {
	case KindText:
		content := strings.TrimSpace(req.Content)
		if content == "" {
			return nil, coreError(ErrCodeInvalidMessage, "message cannot be empty")
		}
		if len(content) > MaxContentLength {
			return nil, coreError(ErrCodeInvalidMessage, "message is too long (max 1000 characters)")
		}
		msg.Content = content

	case KindImage, KindFile, KindAudio:
		if req.FileURL == "" {
			return nil, coreError(ErrCodeInvalidMessage, "file reference is required")
		}
		msg.FileURL = req.FileURL
		msg.FileName = req.FileName
		msg.FileSize = req.FileSize
		msg.MimeType = req.MimeType
		// The file name doubles as searchable content.
		msg.Content = req.FileName

	case KindLocation:
		if req.Location == nil {
			return nil, coreError(ErrCodeInvalidMessage, "location payload is required")
		}
		loc := *req.Location
		loc.Address = strings.TrimSpace(loc.Address)
		if len(loc.Address) > MaxContentLength {
			return nil, coreError(ErrCodeInvalidMessage, "address is too long (max 1000 characters)")
		}
		msg.Location = &loc
		if loc.Address != "" {
			msg.Content = loc.Address
		} else {
			msg.Content = "Shared location"
		}
	}

	return msg, nil
}

// Preview returns the short human-readable preview used in notification
// events: truncated text for text messages, a kind label otherwise.
func (m *Message) Preview() string {
	switch m.Kind {
	case KindImage:
		return "📷 Image"
	case KindAudio:
		return "🎵 Audio"
	case KindFile:
		return "📎 File"
	case KindLocation:
		return "📍 Location"
	}

	runes := []rune(m.Content)
	if len(runes) <= previewLength {
		return m.Content
	}
	return string(runes[:previewLength]) + "..."
}
