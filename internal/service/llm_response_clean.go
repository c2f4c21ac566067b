package service

import (
	"regexp"
	"strings"
)

var (
	reFenceStart = regexp.MustCompile("(?is)^\\s*```(?:markdown|md)?\\s*\n")
	reFenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanCoachReply quita BOM y un fence ```markdown ... ``` que envuelva toda la respuesta.
// Fences internos (ejemplos de codigo dentro del texto) no se tocan.
func cleanCoachReply(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	if reFenceStart.MatchString(s) && reFenceEnd.MatchString(s) {
		s = reFenceStart.ReplaceAllString(s, "")
		s = reFenceEnd.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
