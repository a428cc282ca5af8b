package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/shared"
)

type ChatHandler struct {
	securitySvc  SecurityServiceInterface
	convSvc      ConversationServiceInterface
	assistantSvc AssistantServiceInterface
	metrics      MetricsInterface

	sessionMaxAge time.Duration
}

func NewChatHandler(securitySvc SecurityServiceInterface, convSvc ConversationServiceInterface, assistantSvc AssistantServiceInterface, metrics MetricsInterface, sessionMaxAge time.Duration) *ChatHandler {
	return &ChatHandler{
		securitySvc:   securitySvc,
		convSvc:       convSvc,
		assistantSvc:  assistantSvc,
		metrics:       metrics,
		sessionMaxAge: sessionMaxAge,
	}
}

// @Summary Chat
// @Description This endpoint answers one visitor message within a session
// @Tags chat
// @Accept  json
// @Produce json
// @Param chatRequest body dto.ChatRequest true "Chat request"
// @Success 200 {object} shared.Response{data=dto.ChatResponse}
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	address := GetClientIP(c)

	if err := h.securitySvc.Admit(address, req.Message, sessionID); err != nil {
		h.countOutcome("rejected")
		return err
	}

	if req.UserName != "" {
		h.convSvc.SetUserName(sessionID, req.UserName)
	}
	h.convSvc.RecordUserMessage(sessionID, req.Message)

	reply, err := h.assistantSvc.Chat(c.UserContext(), sessionID, req.Message)
	if err != nil {
		h.countOutcome("error")
		return err
	}

	answer := reply.Message + h.convSvc.Nudge(sessionID)
	h.convSvc.RecordAssistantMessage(sessionID, answer)

	h.countOutcome("ok")
	defer h.sweep()

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.ChatResponse{
		Message:      answer,
		SessionID:    sessionID,
		Timestamp:    time.Now().Format(time.RFC3339),
		ResponseTime: reply.ResponseTime,
		Model:        reply.Model,
	})
}

func (h *ChatHandler) countOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.CountChatRequest(outcome)
	}
}

// sweep drops sessions idle past the max age. Runs in the background after
// a chat request rather than on a timer.
func (h *ChatHandler) sweep() {
	go func() {
		h.convSvc.SweepInactive(h.sessionMaxAge)
		if h.metrics != nil {
			h.metrics.SetActiveSessions(h.convSvc.ActiveSessions())
		}
	}()
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "session_" + raw[:16]
}

// GetClientIP resolves the caller address behind proxies. Proxy headers are
// checked in order before falling back to the socket address.
func GetClientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return c.IP()
}
