package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/shared"
)

type SessionHandler struct {
	convSvc ConversationServiceInterface
}

func NewSessionHandler(convSvc ConversationServiceInterface) *SessionHandler {
	return &SessionHandler{
		convSvc: convSvc,
	}
}

// @Summary End Session
// @Description This endpoint ends a session, triggering summary dispatch and archival
// @Tags session
// @Accept  json
// @Produce json
// @Param endSessionRequest body dto.EndSessionRequest true "End session request"
// @Success 200 {object} shared.Response{data=dto.StatusResponse}
// @Router /api/chat/end-session [post]
func (h *SessionHandler) EndSession(c *fiber.Ctx) error {
	var req dto.EndSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	h.convSvc.EndSession(req.SessionID)

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.StatusResponse{
		Status:    "ended",
		Message:   "Session ended",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// @Summary Clear Session
// @Description This endpoint clears a session transcript and frees its slot
// @Tags session
// @Accept  json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.StatusResponse}
// @Router /api/chat/clear/{sessionId} [post]
func (h *SessionHandler) ClearSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	h.convSvc.ClearSession(sessionID)

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.StatusResponse{
		Status:    "cleared",
		Message:   "Session cleared",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// @Summary Get Session Info
// @Description This endpoint returns session metadata without the transcript
// @Tags session
// @Accept  json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionInfoResponse}
// @Router /api/session/{sessionId} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	s, ok := h.convSvc.Get(sessionID)
	if !ok {
		return shared.NewNotFoundError("Session not found")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.SessionInfoResponse{
		SessionID:    s.ID,
		MessageCount: s.MessageCount,
		UserName:     s.UserName,
		UserLinkedIn: s.UserLinkedIn,
		StartedAt:    s.StartedAt.Format(time.RFC3339),
		LastActivity: s.LastActivity.Format(time.RFC3339),
	})
}
