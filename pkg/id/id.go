package id

import (
	"crypto/rand"
	"encoding/hex"
)

// New32 returns exactly 32 lowercase hex characters (no separators/prefixes).
// All public identifiers (loans, payments, reprogramming requests) use it.
func New32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
