package services

import (
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

const MaxMessageLength = 500

// Pattern classes for the content check: script injection, SQL keywords
// combined with statement syntax, path traversal. First match wins, no
// scoring.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)onerror\s*=`),
	regexp.MustCompile(`(?i)onclick\s*=`),
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop)\s+(all|distinct|from|table)`),
	regexp.MustCompile(`(?i);\s*(drop|delete|truncate)\s+`),
	regexp.MustCompile(`\.\./\.\./\.\./`),
}

// ValidateMessage checks raw message text. Pure function, no side effects
// beyond logging; the empty string return means the message passed.
func ValidateMessage(message string) (bool, string) {
	if len(message) > MaxMessageLength {
		log.Warnf("Message too long: %d chars (max: %d)", len(message), MaxMessageLength)
		return false, fmt.Sprintf("Message too long: Maximum %d characters allowed", MaxMessageLength)
	}

	if strings.TrimSpace(message) == "" {
		return false, "Message cannot be empty"
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(message) {
			log.Warnf("Suspicious pattern detected: %s", pattern.String())
			return false, "Message contains potentially malicious content"
		}
	}

	return true, ""
}
