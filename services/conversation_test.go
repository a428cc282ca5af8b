package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	sent []*model.Session
	err  error
}

func (s *stubDispatcher) SendConversationSummary(session *model.Session) error {
	s.sent = append(s.sent, session)
	return s.err
}

type stubArchive struct {
	saved []*model.ConversationArchive
}

func (s *stubArchive) SaveArchive(archive *model.ConversationArchive) error {
	s.saved = append(s.saved, archive)
	return nil
}

func newTestConversation(clock *testClock) (*ConversationService, *stubDispatcher, *stubArchive) {
	dispatcher := &stubDispatcher{}
	archive := &stubArchive{}

	svc := &ConversationService{
		sessions:   make(map[string]*model.Session),
		dispatcher: dispatcher,
		archive:    archive,
		now:        clock.Now,
	}
	return svc, dispatcher, archive
}

func TestConversationSessionCap(t *testing.T) {
	clock := newTestClock()
	svc, _, _ := newTestConversation(clock)

	ok, _ := svc.CheckLimit("s1")
	require.True(t, ok, "unknown sessions pass the limit check")

	for i := 0; i < MaxMessagesPerSession; i++ {
		ok, _ := svc.CheckLimit("s1")
		require.True(t, ok, "message %d should pass", i+1)
		svc.RecordUserMessage("s1", fmt.Sprintf("question %d", i+1))
		svc.RecordAssistantMessage("s1", "answer")
	}

	ok, reason := svc.CheckLimit("s1")
	assert.False(t, ok)
	assert.Equal(t,
		"Session limit reached: Maximum 15 messages per conversation. Please start a new session.",
		reason)

	s, found := svc.Get("s1")
	require.True(t, found)
	assert.Equal(t, MaxMessagesPerSession, s.MessageCount,
		"assistant turns must not count against the cap")
	assert.Len(t, s.Messages, 2*MaxMessagesPerSession)
}

func TestConversationNudges(t *testing.T) {
	clock := newTestClock()
	svc, _, _ := newTestConversation(clock)

	svc.RecordUserMessage("s1", "hello")
	assert.Empty(t, svc.Nudge("s1"))

	svc.RecordUserMessage("s1", "what do you do?")
	nudge := svc.Nudge("s1")
	assert.Equal(t, "\n\nBy the way, I'd love to know who I'm talking to! What's your name?", nudge)
	assert.Empty(t, svc.Nudge("s1"), "name ask fires at most once")

	svc.RecordUserMessage("s1", "my name is Alice")
	assert.Empty(t, svc.Nudge("s1"))

	svc.RecordUserMessage("s1", "tell me about your projects")
	nudge = svc.Nudge("s1")
	assert.Equal(t,
		"\n\nThanks for the great questions, Alice! I'd love to connect with you. Could you share your LinkedIn profile?",
		nudge)
	assert.Empty(t, svc.Nudge("s1"), "linkedin ask fires at most once")
}

func TestConversationNudgesSkippedWhenVolunteered(t *testing.T) {
	clock := newTestClock()
	svc, _, _ := newTestConversation(clock)

	svc.RecordUserMessage("s1", "hi, I'm Bob")
	svc.RecordUserMessage("s1", "what do you do?")
	assert.Empty(t, svc.Nudge("s1"), "no name ask when the name is already known")

	svc.RecordUserMessage("s1", "find me at linkedin.com/in/bob")
	svc.RecordUserMessage("s1", "one more question")
	assert.Empty(t, svc.Nudge("s1"), "no linkedin ask when the profile is already known")
}

func TestConversationNameExtraction(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"my name is Alice", "Alice"},
		{"Hi, I'm John Smith", "John Smith"},
		{"call me Maverick", "Maverick"},
		{"name's Bond.", "Bond"},
		{"no introduction here", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractName(tt.message), "message: %q", tt.message)
	}
}

func TestConversationLinkedInExtraction(t *testing.T) {
	assert.Equal(t, "https://linkedin.com/in/alice", extractLinkedIn("find me at linkedin.com/in/alice"))
	assert.Equal(t, "https://www.linkedin.com/in/bob", extractLinkedIn("sure: https://www.linkedin.com/in/bob."))
	assert.Empty(t, extractLinkedIn("I don't use social media"))
}

func TestConversationEndSessionDispatchesSummary(t *testing.T) {
	clock := newTestClock()
	svc, dispatcher, archive := newTestConversation(clock)

	svc.RecordUserMessage("s1", "hello, my name is Alice")
	svc.RecordAssistantMessage("s1", "hi Alice")
	svc.RecordUserMessage("s1", "what do you do?")

	svc.EndSession("s1")

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, "Alice", dispatcher.sent[0].UserName)

	require.Len(t, archive.saved, 1)
	saved := archive.saved[0]
	assert.Equal(t, "s1", saved.SessionID)
	assert.Equal(t, 2, saved.MessageCount)
	assert.True(t, saved.Summarized)
	assert.NotEmpty(t, saved.Transcript)

	_, found := svc.Get("s1")
	assert.False(t, found, "ended session must be removed")

	// Ending again is a no-op.
	svc.EndSession("s1")
	assert.Len(t, dispatcher.sent, 1)
}

func TestConversationShortSessionSkipsSummary(t *testing.T) {
	clock := newTestClock()
	svc, dispatcher, archive := newTestConversation(clock)

	svc.RecordUserMessage("s1", "hello")
	svc.RecordAssistantMessage("s1", "hi")

	svc.EndSession("s1")

	assert.Empty(t, dispatcher.sent, "two turns is below the summary threshold")
	require.Len(t, archive.saved, 1, "short sessions are still archived")
	assert.False(t, archive.saved[0].Summarized)
}

func TestConversationSweepInactive(t *testing.T) {
	clock := newTestClock()
	svc, dispatcher, _ := newTestConversation(clock)

	svc.RecordUserMessage("stale", "hello")
	svc.RecordAssistantMessage("stale", "hi")
	svc.RecordUserMessage("stale", "still there?")

	clock.Advance(25 * time.Hour)
	svc.RecordUserMessage("fresh", "hello")

	svc.SweepInactive(SessionMaxAge)

	_, found := svc.Get("stale")
	assert.False(t, found)
	_, found = svc.Get("fresh")
	assert.True(t, found)
	assert.Equal(t, 1, svc.ActiveSessions())
	assert.Len(t, dispatcher.sent, 1, "swept sessions finalize like ended ones")
}

func TestConversationSetUserName(t *testing.T) {
	clock := newTestClock()
	svc, _, _ := newTestConversation(clock)

	svc.SetUserName("s1", "Alice")
	svc.RecordUserMessage("s1", "my name is Bob")

	s, found := svc.Get("s1")
	require.True(t, found)
	assert.Equal(t, "Alice", s.UserName, "an explicit name is never overwritten")
}
