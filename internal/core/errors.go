package core

import "errors"

// Error codes for domain errors surfaced on the wire.
const (
	ErrCodeInvalidIdentity  = "invalid_identity"
	ErrCodeIdentityInUse    = "identity_in_use"
	ErrCodeUnauthenticated  = "unauthenticated"
	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeRecipientOffline = "recipient_offline"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeBadRequest       = "bad_request"
)

var (
	ErrInvalidIdentity  = errors.New("invalid nickname")
	ErrIdentityInUse    = errors.New("nickname already in use")
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrRecipientOffline = errors.New("recipient is not connected")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
