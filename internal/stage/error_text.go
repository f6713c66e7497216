package stage

import "strings"

// sanitizeErrorMessage collapses whitespace so every error prints on one line.
func sanitizeErrorMessage(msg string) string {
	s := strings.Join(strings.Fields(msg), " ")
	if s == "" {
		return "error"
	}
	return s
}
