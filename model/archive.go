package model

import "time"

// ConversationArchive is the durable record of an ended session, written
// when the transcript is summarized (or swept). Transcript is the full
// turn list as JSON.
type ConversationArchive struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text;not null"`
	SessionID    string    `json:"session_id" gorm:"not null;index;size:64"`
	UserName     string    `json:"user_name" gorm:"size:128"`
	UserLinkedIn string    `json:"user_linkedin" gorm:"size:255"`
	MessageCount int       `json:"message_count" gorm:"not null"`
	Transcript   string    `json:"transcript" gorm:"type:text"`
	StartedAt    time.Time `json:"started_at" gorm:"not null"`
	EndedAt      time.Time `json:"ended_at" gorm:"not null"`
	Summarized   bool      `json:"summarized" gorm:"default:false;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

// BlockEvent records each auto-block for the stats surface. The blocklist
// file stays authoritative for admission decisions; this is audit only.
type BlockEvent struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text;not null"`
	Address      string    `json:"address" gorm:"not null;index;size:64"`
	Reason       string    `json:"reason" gorm:"type:text"`
	RequestCount int       `json:"request_count" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}
