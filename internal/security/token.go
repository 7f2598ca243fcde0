package security

import (
	"strings"

	"github.com/google/uuid"
)

// NewSessionToken mints an opaque 128-bit session identifier.
func NewSessionToken() string {
	return uuid.NewString()
}

// ValidSessionToken reports whether a client-presented token is well-formed
// enough to be trusted as a session id. Presented tokens are bucketing keys,
// not credentials, so the check is shape-only: no store lookup happens.
func ValidSessionToken(token string) bool {
	if token == "" || len(token) > 64 {
		return false
	}
	if strings.ContainsAny(token, ";, ") {
		return false
	}
	for _, r := range token {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
