package handlers

import (
	"context"
	"time"

	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/model"
)

type SecurityServiceInterface interface {
	Admit(address, message, sessionID string) error
	Unblock(address string)
	Stats() dto.SecurityStatsResponse
}

type ConversationServiceInterface interface {
	RecordUserMessage(sessionID, content string)
	SetUserName(sessionID, name string)
	RecordAssistantMessage(sessionID, content string)
	Nudge(sessionID string) string
	Get(sessionID string) (*model.Session, bool)
	EndSession(sessionID string)
	ClearSession(sessionID string)
	SweepInactive(maxAge time.Duration)
	ActiveSessions() int
}

type AssistantServiceInterface interface {
	Chat(ctx context.Context, sessionID, message string) (*dto.AssistantReply, error)
	Status() dto.AssistantStatusResponse
	Initialized() bool
}

type MetricsInterface interface {
	CountChatRequest(outcome string)
	SetActiveSessions(n int)
}
