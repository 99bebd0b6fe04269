package utils

import (
	"strings"

	"Impostor/models/postgres"
)

// NormalizeLobbyCode upper-cases a typed join code and reports whether it
// can be a lobby code at all, so obvious typos never reach the database.
func NormalizeLobbyCode(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != postgres.CodeLength {
		return "", false
	}
	for _, r := range code {
		if !strings.ContainsRune(postgres.CodeCharset, r) {
			return "", false
		}
	}
	return code, true
}
