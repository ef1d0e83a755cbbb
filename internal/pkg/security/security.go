// Package security provides input validation, sanitization, and sensitive
// data masking for values that cross process boundaries: user-supplied file
// paths, query text, scraped page text, and provider credentials in logs.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits.
const (
	MaxQueryLength = 10000
	MaxPathLength  = 1024
)

// PathError represents a path validation error.
type PathError struct {
	Reason string
	Path   string
}

func (e *PathError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid path: %s", e.Reason)
}

// ValidateDataPath validates a user-supplied data file path (catalog,
// dataset, question file). Absolute paths are allowed; null bytes and
// oversized paths are not.
func ValidateDataPath(path string) error {
	if path == "" {
		return &PathError{Reason: "path is empty"}
	}
	if len(path) > MaxPathLength {
		return &PathError{Reason: "path exceeds maximum length", Path: path}
	}
	if strings.ContainsRune(path, 0) {
		return &PathError{Reason: "path contains null byte"}
	}
	cleaned := filepath.Clean(path)
	if cleaned == "." || cleaned == "" {
		return &PathError{Reason: "path resolves to nothing", Path: path}
	}
	return nil
}

// ValidateQuery validates a query string: required, bounded, valid UTF-8.
func ValidateQuery(query string) error {
	if query == "" {
		return fmt.Errorf("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return fmt.Errorf("query exceeds maximum length of %d characters", MaxQueryLength)
	}
	if !utf8.ValidString(query) {
		return fmt.Errorf("query must be valid UTF-8")
	}
	return nil
}

// SanitizeForLog sanitizes a string for logging. Newlines and carriage
// returns are escaped, other control characters removed, output truncated.
func SanitizeForLog(s string) string {
	return SanitizeForLogWithLength(s, 200)
}

// SanitizeForLogWithLength sanitizes a string for logging with a custom max length.
func SanitizeForLogWithLength(s string, maxLen int) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	count := 0
	for _, r := range s {
		if count >= maxLen {
			b.WriteString("...")
			break
		}

		switch r {
		case '\n':
			b.WriteString("\\n")
			count += 2
		case '\r':
			b.WriteString("\\r")
			count += 2
		case '\t':
			b.WriteString("\\t")
			count += 2
		default:
			if !unicode.IsControl(r) || r == ' ' {
				b.WriteRune(r)
				count++
			}
		}
	}

	return b.String()
}

// SanitizeText strips control characters from free text (scraped page text,
// synthesized answers) while preserving normal whitespace.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}

	sanitized := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(sanitized)
}

// MaskAPIKey masks a provider API key for logging, keeping a short prefix.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "[REDACTED]"
	}
	return key[:4] + "…" + "[REDACTED]"
}

// sensitiveFieldPatterns are config key substrings whose values are masked.
var sensitiveFieldPatterns = []string{
	"key", "token", "secret", "password", "credential",
}

// MaskSensitiveMap masks sensitive values in a string map.
// Useful for logging effective configuration.
func MaskSensitiveMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}

	masked := make(map[string]string, len(m))
	for key, value := range m {
		if isSensitiveKey(key) {
			masked[key] = "[REDACTED]"
		} else {
			masked[key] = value
		}
	}
	return masked
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveFieldPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
