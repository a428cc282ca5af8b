package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
	log "github.com/sirupsen/logrus"
)

// SummaryDispatcher receives the transcript of an ended session.
type SummaryDispatcher interface {
	SendConversationSummary(session *model.Session) error
}

// ArchiveStore persists ended conversations for operator visibility.
type ArchiveStore interface {
	SaveArchive(archive *model.ConversationArchive) error
}

// ConversationService tracks live chat sessions in memory: transcript,
// message cap, name/LinkedIn capture, and the end-of-session summary
// hand-off. Sessions idle past SessionMaxAge are swept opportunistically
// after request handling, not on a dedicated timer.
type ConversationService struct {
	context.DefaultService

	sessions map[string]*model.Session
	mutex    sync.Mutex

	dispatcher SummaryDispatcher
	archive    ArchiveStore
	now        func() time.Time
}

const CONVERSATION_SVC = "conversation_svc"

const (
	// MaxMessagesPerSession caps user messages per conversation; the 16th
	// is rejected.
	MaxMessagesPerSession = 15

	// SummaryMinTurns is the transcript length below which no summary is
	// dispatched. Threshold policy, not negotiable.
	SummaryMinTurns = 3

	SessionMaxAge = 24 * time.Hour
)

var namePatterns = []string{
	"my name is ",
	"i'm ",
	"i am ",
	"this is ",
	"call me ",
	"name's ",
}

func (svc ConversationService) Id() string {
	return CONVERSATION_SVC
}

func (svc *ConversationService) Configure(ctx *context.Context) error {
	svc.sessions = make(map[string]*model.Session)
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *ConversationService) Start() error {
	if svc.dispatcher == nil {
		svc.dispatcher = svc.Service(EMAIL_SVC).(*EmailService)
	}
	if svc.archive == nil {
		svc.archive = svc.Service(SQLITE_SVC).(*SqliteService)
	}
	return nil
}

// CheckLimit gates a new turn. The caller records the message afterwards;
// this only decides.
func (svc *ConversationService) CheckLimit(sessionID string) (bool, string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s, ok := svc.sessions[sessionID]
	if !ok {
		return true, ""
	}

	if s.MessageCount >= MaxMessagesPerSession {
		log.Warnf("Session limit exceeded: %s (%d/%d)", sessionID, s.MessageCount, MaxMessagesPerSession)
		return false, fmt.Sprintf(
			"Session limit reached: Maximum %d messages per conversation. Please start a new session.",
			MaxMessagesPerSession)
	}

	return true, ""
}

// RecordUserMessage appends the visitor's turn, bumps the message count and
// captures name/LinkedIn if the message volunteers them.
func (svc *ConversationService) RecordUserMessage(sessionID, content string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s := svc.touchLocked(sessionID)

	if s.UserName == "" {
		if name := extractName(content); name != "" {
			s.UserName = name
			log.Infof("User name set: %s", name)
		}
	}
	if s.UserLinkedIn == "" {
		if url := extractLinkedIn(content); url != "" {
			s.UserLinkedIn = url
			log.Infof("User LinkedIn set: %s", url)
		}
	}

	s.Messages = append(s.Messages, model.Message{
		Role:      shared.RoleUser,
		Content:   content,
		Timestamp: svc.now(),
	})
	s.MessageCount++
	s.LastActivity = svc.now()
}

// SetUserName records a name supplied explicitly by the client, for
// frontends that collect it up front. Never overwrites a captured name.
func (svc *ConversationService) SetUserName(sessionID, name string) {
	if name == "" {
		return
	}

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s := svc.touchLocked(sessionID)
	if s.UserName == "" {
		s.UserName = name
	}
}

// RecordAssistantMessage appends the reply turn. Does not count against the
// session cap.
func (svc *ConversationService) RecordAssistantMessage(sessionID, content string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s := svc.touchLocked(sessionID)
	s.Messages = append(s.Messages, model.Message{
		Role:      shared.RoleAssistant,
		Content:   content,
		Timestamp: svc.now(),
	})
	s.LastActivity = svc.now()
}

// Nudge returns text to append to the current reply: a name ask after the
// 1st completed exchange, a LinkedIn ask after the 3rd. Each fires at most
// once and is skipped when the visitor already volunteered the detail.
func (svc *ConversationService) Nudge(sessionID string) string {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s, ok := svc.sessions[sessionID]
	if !ok {
		return ""
	}

	if s.MessageCount == 2 && !s.AskedForName && s.UserName == "" {
		s.AskedForName = true
		log.Infof("Asking for name in session %s", sessionID)
		return "\n\nBy the way, I'd love to know who I'm talking to! What's your name?"
	}

	if s.MessageCount == 4 && !s.AskedForLinkedIn && s.UserLinkedIn == "" {
		s.AskedForLinkedIn = true
		log.Infof("Asking for LinkedIn in session %s", sessionID)
		if s.UserName != "" {
			return fmt.Sprintf(
				"\n\nThanks for the great questions, %s! I'd love to connect with you. Could you share your LinkedIn profile?",
				s.UserName)
		}
		return "\n\nI'd love to connect with you! Could you share your LinkedIn profile?"
	}

	return ""
}

// Get returns a copy of the session record.
func (svc *ConversationService) Get(sessionID string) (*model.Session, bool) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s, ok := svc.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return copySession(s), true
}

// History returns the transcript for prompt construction.
func (svc *ConversationService) History(sessionID string) []model.Message {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	s, ok := svc.sessions[sessionID]
	if !ok {
		return nil
	}

	out := make([]model.Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// EndSession finalizes a conversation: summary dispatch when the transcript
// has enough turns, archive write, and removal of the live record. Ending
// an unknown session is tolerated silently.
func (svc *ConversationService) EndSession(sessionID string) {
	svc.mutex.Lock()
	s, ok := svc.sessions[sessionID]
	if !ok {
		svc.mutex.Unlock()
		return
	}
	snapshot := copySession(s)
	delete(svc.sessions, sessionID)
	svc.mutex.Unlock()

	svc.finalize(snapshot)
}

// ClearSession is the explicit-clear path; same finalization as EndSession.
func (svc *ConversationService) ClearSession(sessionID string) {
	svc.EndSession(sessionID)
}

// SweepInactive finalizes sessions idle past maxAge. Runs opportunistically
// after request handling; not guaranteed to run if traffic stops.
func (svc *ConversationService) SweepInactive(maxAge time.Duration) {
	cutoff := svc.now().Add(-maxAge)

	svc.mutex.Lock()
	var stale []*model.Session
	for id, s := range svc.sessions {
		if s.LastActivity.Before(cutoff) {
			stale = append(stale, copySession(s))
			delete(svc.sessions, id)
		}
	}
	svc.mutex.Unlock()

	for _, s := range stale {
		log.Infof("Cleaned up old session: %s", s.ID)
		svc.finalize(s)
	}
}

// ActiveSessions reports the number of live sessions.
func (svc *ConversationService) ActiveSessions() int {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	return len(svc.sessions)
}

func (svc *ConversationService) finalize(s *model.Session) {
	summarized := false
	if len(s.Messages) >= SummaryMinTurns && svc.dispatcher != nil {
		if err := svc.dispatcher.SendConversationSummary(s); err != nil {
			log.WithError(err).Errorf("Failed to send summary for session %s", s.ID)
		} else {
			summarized = true
		}
	} else if len(s.Messages) < SummaryMinTurns {
		log.Infof("Skipping summary for session %s - too few messages (%d)", s.ID, len(s.Messages))
	}

	if svc.archive == nil {
		return
	}

	transcript, err := sonic.MarshalString(s.Messages)
	if err != nil {
		log.WithError(err).Error("Failed to encode transcript for archive")
		transcript = "[]"
	}

	err = svc.archive.SaveArchive(&model.ConversationArchive{
		ID:           uuid.New().String(),
		SessionID:    s.ID,
		UserName:     s.UserName,
		UserLinkedIn: s.UserLinkedIn,
		MessageCount: s.MessageCount,
		Transcript:   transcript,
		StartedAt:    s.StartedAt,
		EndedAt:      svc.now(),
		Summarized:   summarized,
		CreatedAt:    svc.now(),
	})
	if err != nil {
		log.WithError(err).Errorf("Failed to archive session %s", s.ID)
	}
}

func (svc *ConversationService) touchLocked(sessionID string) *model.Session {
	s, ok := svc.sessions[sessionID]
	if !ok {
		s = &model.Session{
			ID:           sessionID,
			StartedAt:    svc.now(),
			LastActivity: svc.now(),
		}
		svc.sessions[sessionID] = s
	}
	return s
}

func copySession(s *model.Session) *model.Session {
	out := *s
	out.Messages = make([]model.Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}

func extractName(message string) string {
	lower := strings.ToLower(message)

	for _, pattern := range namePatterns {
		idx := strings.Index(lower, pattern)
		if idx < 0 {
			continue
		}

		rest := strings.TrimSpace(message[idx+len(pattern):])
		words := strings.Fields(rest)
		if len(words) > 3 {
			words = words[:3]
		}

		var kept []string
		for _, w := range words {
			switch strings.ToLower(w) {
			case "and", "the", "a":
				continue
			}
			kept = append(kept, w)
		}

		if len(kept) > 0 {
			return strings.Trim(strings.Join(kept, " "), ".,!?")
		}
	}

	return ""
}

func extractLinkedIn(message string) string {
	if !strings.Contains(strings.ToLower(message), "linkedin.com") {
		return ""
	}

	for _, word := range strings.Fields(message) {
		if !strings.Contains(strings.ToLower(word), "linkedin.com") {
			continue
		}

		url := strings.Trim(word, ".,!?<>()\"'")
		if !strings.HasPrefix(url, "http") {
			url = "https://" + url
		}
		return url
	}

	return ""
}
