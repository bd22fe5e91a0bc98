// Package redact masks credentials, tokens, personal data and SQL in
// strings before they reach logs.
package redact

import "regexp"

// Placeholders substituted for redacted content.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	OTPPlaceholder        = "[REDACTED_OTP]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules run in order; earlier rules see the original text.
var rules = []rule{
	// otpauth URLs embed the shared TOTP secret.
	{regexp.MustCompile(`otpauth://[^\s"']+`), OTPPlaceholder},
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|sqlite|file)://[^@\s]+@`), CredentialPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), JWTPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]{3,}`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|totp)\s*[=:]\s*['"]?[A-Za-z0-9_\-.~+/=]{8,}`), KeyPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`(?is)\b(SELECT|INSERT|UPDATE|DELETE)\b.*?\b(FROM|INTO|SET)\b[^;]*`), SQLPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){3,}`), PathPlaceholder},
}

// String returns input with sensitive fragments replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	out := input
	for _, r := range rules {
		out = r.pattern.ReplaceAllString(out, r.placeholder)
	}
	return out
}

// Error redacts err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
