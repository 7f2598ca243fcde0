package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentityHasher anonymizes raw client identifiers (IP, user-agent) into
// fixed-length one-way digests. Deterministic for a given pepper; accepts
// arbitrary byte strings.
type IdentityHasher struct {
	pepper string
}

func NewIdentityHasher(pepper string) *IdentityHasher {
	return &IdentityHasher{pepper: pepper}
}

func (h *IdentityHasher) Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw + ":" + h.pepper))
	return hex.EncodeToString(sum[:])
}
