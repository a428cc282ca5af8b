package model

import "time"

// Message is one turn in a conversation transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one chat conversation. Lives in memory only; ended sessions
// are archived to SQLite and the live record dropped.
type Session struct {
	ID               string    `json:"session_id"`
	Messages         []Message `json:"messages"`
	MessageCount     int       `json:"message_count"`
	UserName         string    `json:"user_name,omitempty"`
	UserLinkedIn     string    `json:"user_linkedin,omitempty"`
	AskedForName     bool      `json:"asked_for_name"`
	AskedForLinkedIn bool      `json:"asked_for_linkedin"`
	StartedAt        time.Time `json:"started_at"`
	LastActivity     time.Time `json:"last_activity"`
}
