package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantOK  bool
		reason  string
	}{
		{
			name:    "plain question",
			message: "What projects have you worked on?",
			wantOK:  true,
		},
		{
			name:    "exactly at the length limit",
			message: strings.Repeat("a", MaxMessageLength),
			wantOK:  true,
		},
		{
			name:    "over the length limit",
			message: strings.Repeat("a", MaxMessageLength+1),
			wantOK:  false,
			reason:  "Message too long: Maximum 500 characters allowed",
		},
		{
			name:    "empty",
			message: "",
			wantOK:  false,
			reason:  "Message cannot be empty",
		},
		{
			name:    "whitespace only",
			message: "   \t\n  ",
			wantOK:  false,
			reason:  "Message cannot be empty",
		},
		{
			name:    "script tag",
			message: `hello <script>alert(1)</script>`,
			wantOK:  false,
			reason:  "Message contains potentially malicious content",
		},
		{
			name:    "javascript url",
			message: "click javascript:alert(1)",
			wantOK:  false,
			reason:  "Message contains potentially malicious content",
		},
		{
			name:    "sql keywords with statement syntax",
			message: "1; DROP TABLE users",
			wantOK:  false,
			reason:  "Message contains potentially malicious content",
		},
		{
			name:    "delete from",
			message: "DELETE FROM users WHERE 1=1",
			wantOK:  false,
			reason:  "Message contains potentially malicious content",
		},
		{
			name:    "path traversal",
			message: "read ../../../etc/passwd",
			wantOK:  false,
			reason:  "Message contains potentially malicious content",
		},
		{
			name:    "sql words in prose pass",
			message: "Can you select a project to drop into the conversation?",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateMessage(tt.message)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
