package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionTestApp(conv ConversationServiceInterface) *fiber.App {
	h := NewSessionHandler(conv)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := shared.GetAppError(err); ok {
				return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
			}
			return shared.ResponseInternalError(c, err)
		},
	})
	app.Post("/api/chat/end-session", h.EndSession)
	app.Post("/api/chat/clear/:sessionId", h.ClearSession)
	app.Get("/api/session/:sessionId", h.GetSession)
	return app
}

func TestSessionHandlerEndSession(t *testing.T) {
	conv := &stubConversation{}
	app := newSessionTestApp(conv)

	req := httptest.NewRequest("POST", "/api/chat/end-session",
		strings.NewReader(`{"session_id":"session_abc"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"session_abc"}, conv.ended)
}

func TestSessionHandlerEndSessionRequiresID(t *testing.T) {
	app := newSessionTestApp(&stubConversation{})

	req := httptest.NewRequest("POST", "/api/chat/end-session", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionHandlerClearSession(t *testing.T) {
	conv := &stubConversation{}
	app := newSessionTestApp(conv)

	req := httptest.NewRequest("POST", "/api/chat/clear/session_abc", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"session_abc"}, conv.ended)
}

func TestSessionHandlerGetSession(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := &stubConversation{session: &model.Session{
		ID:           "session_abc",
		MessageCount: 4,
		UserName:     "Alice",
		StartedAt:    started,
		LastActivity: started.Add(5 * time.Minute),
	}}
	app := newSessionTestApp(conv)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/session/session_abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"message_count":4`)
	assert.Contains(t, string(body), "Alice")
}

func TestSessionHandlerGetUnknownSession(t *testing.T) {
	app := newSessionTestApp(&stubConversation{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/session/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
