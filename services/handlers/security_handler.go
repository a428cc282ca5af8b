package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
)

type ArchiveReaderInterface interface {
	GetArchive(sessionID string) (*model.ConversationArchive, error)
	RecentArchives(limit int) ([]model.ConversationArchive, error)
}

type SecurityHandler struct {
	securitySvc SecurityServiceInterface
	archiveSvc  ArchiveReaderInterface
}

func NewSecurityHandler(securitySvc SecurityServiceInterface, archiveSvc ArchiveReaderInterface) *SecurityHandler {
	return &SecurityHandler{
		securitySvc: securitySvc,
		archiveSvc:  archiveSvc,
	}
}

// @Summary Security Stats
// @Description This endpoint reports blocked addresses, quota usage and configured limits
// @Tags security
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SecurityStatsResponse}
// @Router /api/security/stats [get]
func (h *SecurityHandler) Stats(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.securitySvc.Stats())
}

// @Summary Unblock IP
// @Description This endpoint removes an address from the blocklist and resets its counters
// @Tags security
// @Accept  json
// @Produce json
// @Param ip path string true "IP address"
// @Success 200 {object} shared.Response{data=dto.StatusResponse}
// @Router /api/security/unblock/{ip} [post]
func (h *SecurityHandler) Unblock(c *fiber.Ctx) error {
	address := c.Params("ip")

	h.securitySvc.Unblock(address)

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.StatusResponse{
		Status:    "unblocked",
		Message:   "IP " + address + " unblocked",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// @Summary Recent Archives
// @Description This endpoint lists recently archived conversations
// @Tags security
// @Accept  json
// @Produce json
// @Param limit query int false "Max rows"
// @Success 200 {object} shared.Response{data=[]model.ConversationArchive}
// @Router /api/admin/archives [get]
func (h *SecurityHandler) RecentArchives(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	archives, err := h.archiveSvc.RecentArchives(limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", archives)
}

// @Summary Get Archive
// @Description This endpoint fetches one archived conversation by session id
// @Tags security
// @Accept  json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=model.ConversationArchive}
// @Router /api/admin/archives/{sessionId} [get]
func (h *SecurityHandler) GetArchive(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	archive, err := h.archiveSvc.GetArchive(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", archive)
}
