package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/services/handlers"
	"github.com/rayansh0071505/portfolio-api/shared"
)

type HttpService struct {
	context.DefaultService

	securitySvc  *SecurityService
	convSvc      *ConversationService
	assistantSvc *AssistantService
	sqlSvc       *SqliteService
	cacheSvc     *CacheService
	jwtSvc       *JWTService
	monSvc       *MonitoringService

	chatHandler     *handlers.ChatHandler
	sessionHandler  *handlers.SessionHandler
	securityHandler *handlers.SecurityHandler

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.securitySvc = svc.Service(SECURITY_SVC).(*SecurityService)
	svc.convSvc = svc.Service(CONVERSATION_SVC).(*ConversationService)
	svc.assistantSvc = svc.Service(ASSISTANT_SVC).(*AssistantService)
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.cacheSvc = svc.Service(CACHE_SVC).(*CacheService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)

	var metrics handlers.MetricsInterface
	if mon, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monSvc = mon
		metrics = mon
	}

	svc.chatHandler = handlers.NewChatHandler(svc.securitySvc, svc.convSvc, svc.assistantSvc, metrics, SessionMaxAge)
	svc.sessionHandler = handlers.NewSessionHandler(svc.convSvc)
	svc.securityHandler = handlers.NewSecurityHandler(svc.securitySvc, svc.sqlSvc)

	config := fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: svc.handleError,
	}

	app := fiber.New(config)
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if svc.monSvc != nil {
		app.Use(MonitoringMiddleware(svc.monSvc))
	}

	app.Get("/", svc.health)

	api := app.Group("/api")
	api.Get("/status", svc.status)

	api.Post("/chat", svc.chatHandler.Chat)
	api.Post("/chat/end-session", svc.sessionHandler.EndSession)
	api.Post("/chat/clear/:sessionId", svc.sessionHandler.ClearSession)
	api.Get("/session/:sessionId", svc.sessionHandler.GetSession)

	security := api.Group("/security")
	security.Get("/stats", svc.securityHandler.Stats)
	security.Post("/unblock/:ip", svc.jwtSvc.RequireAdmin(), svc.securityHandler.Unblock)

	admin := api.Group("/admin", svc.jwtSvc.RequireAdmin())
	admin.Get("/archives", svc.securityHandler.RecentArchives)
	admin.Get("/archives/:sessionId", svc.securityHandler.GetArchive)
	admin.Post("/cache/clear", svc.clearCache)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c, "Page not found")
	})

	svc.server = app

	log.Infof("HTTP server listening on :%d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Health
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router / [get]
func (svc *HttpService) health(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	status := svc.assistantSvc.Status()
	return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{
		Status:        "healthy",
		Timestamp:     status.Timestamp,
		AIInitialized: status.AIInitialized,
	})
}

// @Summary Assistant Status
// @Description This endpoint reports which model provider is currently serving
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.AssistantStatusResponse}
// @Router /api/status [get]
func (svc *HttpService) status(c *fiber.Ctx) error {
	return shared.ResponseOK(c, svc.assistantSvc.Status())
}

// @Summary Clear Response Cache
// @Description This endpoint drops every cached reply after a knowledge base update
// @Tags admin
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /api/admin/cache/clear [post]
func (svc *HttpService) clearCache(c *fiber.Ctx) error {
	if !svc.cacheSvc.Enabled() {
		return shared.NewBadRequestError(nil, "Cache is not enabled")
	}

	if err := svc.cacheSvc.Invalidate(c.UserContext()); err != nil {
		return err
	}

	return shared.ResponseOK(c, "cache cleared")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
