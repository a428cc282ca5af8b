package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatRequestValidate(t *testing.T) {
	assert.NoError(t, ChatRequest{Message: "hello"}.Validate())
	assert.NoError(t, ChatRequest{Message: "hello", SessionID: "session_abc", UserName: "Alice"}.Validate())

	assert.Error(t, ChatRequest{}.Validate(), "message is required")
	assert.Error(t, ChatRequest{Message: strings.Repeat("a", 501)}.Validate(), "message is capped at 500 chars")
	assert.Error(t, ChatRequest{Message: "hi", SessionID: strings.Repeat("s", 65)}.Validate())
}

func TestEndSessionRequestValidate(t *testing.T) {
	assert.NoError(t, EndSessionRequest{SessionID: "session_abc"}.Validate())
	assert.Error(t, EndSessionRequest{}.Validate())
}

func TestFormatValidationErrors(t *testing.T) {
	err := ChatRequest{}.Validate()
	resp := CreateValidationErrorResponse(err)

	assert.Equal(t, "Validation failed", resp.Message)
	assert.NotEmpty(t, resp.Errors)
	assert.Equal(t, "Message", resp.Errors[0].Field)
}
