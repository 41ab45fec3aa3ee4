// Package redact scrubs credentials from text before it is logged or
// returned in an error message.
package redact

import "regexp"

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// GitHub classic, OAuth, app and refresh tokens
		`\bgh[pousr]_[A-Za-z0-9]{20,}`,
		// GitHub fine-grained personal access tokens
		`\bgithub_pat_[A-Za-z0-9_]{20,}`,
		// Bearer / token authorization headers
		`(?i)(bearer|token)\s+[A-Za-z0-9\-._~+/]{8,}=*`,
		// Generic key/secret/token/password assignments
		`(?i)(api[_-]?key|client[_-]?secret|access[_-]?token|token|password|passwd)\s*[:=]\s*\S+`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// Redact replaces credential patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
