package services

import (
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
	log "github.com/sirupsen/logrus"
)

// SecurityService runs the admission pipeline in front of the chat
// endpoint: blocklist fast path, then validator, rate limiter and session
// limiter in order. Any failed check short-circuits; later checks are
// skipped entirely.
type SecurityService struct {
	context.DefaultService

	blocklistSvc *BlocklistService
	rateLimitSvc *RateLimitService
	quotaSvc     *QuotaService
	convSvc      *ConversationService
	sqlSvc       *SqliteService
	monSvc       *MonitoringService
}

const SECURITY_SVC = "security_svc"

func (svc SecurityService) Id() string {
	return SECURITY_SVC
}

func (svc *SecurityService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SecurityService) Start() error {
	svc.blocklistSvc = svc.Service(BLOCKLIST_SVC).(*BlocklistService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.quotaSvc = svc.Service(QUOTA_SVC).(*QuotaService)
	svc.convSvc = svc.Service(CONVERSATION_SVC).(*ConversationService)
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)

	if mon, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monSvc = mon
	}

	return nil
}

// Admit decides whether a chat request may proceed. Returns nil when every
// check passes; otherwise a shared.AppError describing the first refusal.
func (svc *SecurityService) Admit(address, message, sessionID string) error {
	if blocked, reason := svc.blocklistSvc.IsBlocked(address); blocked {
		svc.countRejection("blocked")
		return shared.NewBlockedError(reason)
	}

	if ok, reason := ValidateMessage(message); !ok {
		svc.countRejection("validation")
		return shared.NewValidationError(reason)
	}

	allowed, reason, block := svc.rateLimitSvc.Allow(address)
	if !allowed {
		if block != nil {
			svc.blocklistSvc.Block(block.Address, block.Reason, block.RequestCount)
			svc.recordBlockEvent(block)
			svc.countRejection("auto_block")
		} else {
			svc.countRejection("rate_limit")
		}
		return shared.NewRateLimitError(reason)
	}

	if ok, reason := svc.convSvc.CheckLimit(sessionID); !ok {
		svc.countRejection("session_limit")
		return shared.NewSessionLimitError(reason)
	}

	return nil
}

// Unblock removes an address from the deny list and clears its counters so
// the stale day count cannot immediately re-block it. Idempotent.
func (svc *SecurityService) Unblock(address string) {
	svc.blocklistSvc.Unblock(address)
	svc.rateLimitSvc.Reset(address)
}

func (svc *SecurityService) Stats() dto.SecurityStatsResponse {
	var autoBlocks int64
	if svc.sqlSvc != nil {
		if count, err := svc.sqlSvc.BlockEventCount(); err == nil {
			autoBlocks = count
		}
	}

	return dto.SecurityStatsResponse{
		BlockedIPs:      svc.blocklistSvc.All(),
		TotalAutoBlocks: autoBlocks,
		DailyQuota:      svc.quotaSvc.Stats(),
		Limits: dto.LimitConfig{
			RequestsPerMinute:  MaxRequestsPerMinute,
			RequestsPerHour:    MaxRequestsPerHour,
			RequestsPerDay:     MaxRequestsPerDay,
			MessagesPerSession: MaxMessagesPerSession,
		},
	}
}

func (svc *SecurityService) recordBlockEvent(block *BlockInstruction) {
	if svc.sqlSvc == nil {
		return
	}

	err := svc.sqlSvc.SaveBlockEvent(&model.BlockEvent{
		ID:           uuid.New().String(),
		Address:      block.Address,
		Reason:       block.Reason,
		RequestCount: block.RequestCount,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to record block event")
	}
}

func (svc *SecurityService) countRejection(reason string) {
	if svc.monSvc != nil {
		svc.monSvc.CountAdmissionRejection(reason)
	}
}
