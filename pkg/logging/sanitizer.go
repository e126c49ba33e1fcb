package logging

import (
	"regexp"
	"unicode/utf8"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log.
	MaxQueryLogLength = 200
	// RedactedText replaces sensitive data.
	RedactedText = "[REDACTED]"
)

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordRule = redaction{regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`), "${1}=" + RedactedText}

	// user:pass@host in URLs
	connStringRule = redaction{regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`), "://" + RedactedText + "@" + RedactedText}

	bearerRule = redaction{regexp.MustCompile(`Bearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer " + RedactedText}

	// key=... query parameters, as used by the Gemini REST API
	apiKeyParamRule = redaction{regexp.MustCompile(`(?i)(api[_-]?key|key)=[A-Za-z0-9._-]{16,}`), "${1}=" + RedactedText}

	// OpenAI and Anthropic secret keys (sk-..., sk-ant-..., sk-proj-...)
	secretKeyRule = redaction{regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`), RedactedText}

	// Google API keys
	googleKeyRule = redaction{regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`), RedactedText}
)

func apply(s string, rules ...redaction) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// SanitizeConnectionString removes credentials from a DSN before logging.
func SanitizeConnectionString(connStr string) string {
	return apply(connStr, passwordRule, connStringRule)
}

// SanitizeError renders err with credentials and provider keys removed.
// Provider SDK errors can echo request URLs and headers.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText removes every known secret pattern from s.
func SanitizeText(s string) string {
	return apply(s, passwordRule, bearerRule, secretKeyRule, googleKeyRule, apiKeyParamRule, connStringRule)
}

// SanitizeQuery truncates SQL to MaxQueryLogLength and removes secrets.
func SanitizeQuery(query string) string {
	return apply(TruncateString(query, MaxQueryLogLength), passwordRule, secretKeyRule, apiKeyParamRule)
}

// TruncateString truncates s to at most maxLen bytes without splitting a
// UTF-8 sequence, adding an ellipsis when truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
