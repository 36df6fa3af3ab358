package logging

import (
	"regexp"
)

const (
	// MaxPayloadLogLength is the maximum length of a payload excerpt to log
	MaxPayloadLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match JWT tokens (three base64 segments separated by dots)
	jwtPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`)

	// Pattern to match potential API keys in descriptor or error text
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|client[_-]?secret|token)=[A-Za-z0-9-_.]{8,}`)

	// Pattern to match URL-embedded credentials (user:pass@host format)
	urlCredsPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// SanitizeError sanitizes error messages that might contain credentials.
// Use this before logging any error from dataplane or auth operations.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := jwtPattern.ReplaceAllString(err.Error(), "Bearer "+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = urlCredsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeToken redacts a bearer token for logging, keeping a short prefix so
// runs remain distinguishable in logs.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return RedactedText
	}
	return token[:8] + "..." + RedactedText
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
