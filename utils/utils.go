package utils

import (
	"os"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML sanitizes user-supplied strings (team names, tournament names,
// channel handles) before they are embedded into HTML-formatted chat messages.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
