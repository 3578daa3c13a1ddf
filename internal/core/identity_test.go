package core

import "testing"

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantCode string
	}{
		{name: "ok simple", input: "alice", want: "alice"},
		{name: "ok trimmed", input: "  alice  ", want: "alice"},
		{name: "ok with underscore and digits", input: "alice_42", want: "alice_42"},
		{name: "ok minimum length", input: "abc", want: "abc"},
		{name: "ok maximum length with underscore", input: "abcdefghij_abcdefghi", want: "abcdefghij_abcdefghi"},
		{name: "empty", input: "", wantCode: ErrCodeInvalidIdentity},
		{name: "whitespace only", input: "   ", wantCode: ErrCodeInvalidIdentity},
		{name: "too short", input: "ab", wantCode: ErrCodeInvalidIdentity},
		{name: "too long", input: "abcdefghij_abcdefghij", wantCode: ErrCodeInvalidIdentity},
		{name: "space inside", input: "ali ce", wantCode: ErrCodeInvalidIdentity},
		{name: "dash", input: "ali-ce", wantCode: ErrCodeInvalidIdentity},
		{name: "non ascii", input: "alicé", wantCode: ErrCodeInvalidIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNickname(tt.input)
			if tt.wantCode != "" {
				if err == nil || err.Code != tt.wantCode {
					t.Fatalf("expected %s, got nickname=%q err=%+v", tt.wantCode, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
