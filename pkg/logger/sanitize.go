package logger

import "strings"

// MaskUsername masks a username for logging, keeping the first character
// (e.g. "M****"). Usernames are user-chosen identifiers and should not land
// in logs verbatim.
func MaskUsername(username string) string {
	if username == "" {
		return ""
	}
	runes := []rune(username)
	if len(runes) == 1 {
		return "*"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// SanitizeQueryString reports whether a raw query string contains sensitive
// parameters and should be redacted wholesale from request logs.
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"api_key",
		"apikey",
		"auth",
		"signature",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
