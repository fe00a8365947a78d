package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash is a hex-encoded SHA-256 digest.
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first n hex characters, or the whole hash if shorter.
func (h Hash) Short(n int) string {
	if n <= 0 || n >= len(h) {
		return string(h)
	}
	return string(h[:n])
}

// ComputeKeyHash hashes an ordered list of parts. Order matters: the same
// parts in a different order produce a different hash.
func ComputeKeyHash(parts ...string) Hash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteByte(0)
	}
	return NewHash([]byte(data.String()))
}
