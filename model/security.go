package model

import "time"

// BlockedIP is a persistent deny-list entry, keyed by address in the
// blocklist file. Removed only by an explicit unblock.
type BlockedIP struct {
	Reason       string    `json:"reason"`
	BlockedAt    time.Time `json:"blocked_at"`
	RequestCount int       `json:"request_count"`
}

// WindowCounter is one fixed rate-limit window. The count resets entirely
// when the window rolls over.
type WindowCounter struct {
	Count       int
	WindowStart time.Time
}

// ClientWindows holds the three overlapping windows for one address.
// In-memory only; lost on restart.
type ClientWindows struct {
	Minute WindowCounter
	Hour   WindowCounter
	Day    WindowCounter
}

// QuotaState is the persisted daily quota document.
type QuotaState struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
