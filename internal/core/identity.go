package core

import (
	"regexp"
	"strings"
)

const (
	// NicknameMinLength is the minimum accepted nickname length.
	NicknameMinLength = 3
	// NicknameMaxLength is the maximum accepted nickname length.
	NicknameMaxLength = 20
)

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateNickname trims and validates a nickname against the identity
// constraints. Returns the normalized nickname or a domain error.
func ValidateNickname(nickname string) (string, *CoreError) {
	trimmed := strings.TrimSpace(nickname)

	if trimmed == "" {
		return "", coreError(ErrCodeInvalidIdentity, "nickname is required")
	}
	if len(trimmed) < NicknameMinLength {
		return "", coreError(ErrCodeInvalidIdentity, "nickname must be at least 3 characters")
	}
	if len(trimmed) > NicknameMaxLength {
		return "", coreError(ErrCodeInvalidIdentity, "nickname must be at most 20 characters")
	}
	if !nicknamePattern.MatchString(trimmed) {
		return "", coreError(ErrCodeInvalidIdentity, "nickname may only contain letters, numbers and underscores")
	}

	return trimmed, nil
}
