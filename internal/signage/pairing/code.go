package pairing

import (
	"crypto/rand"
	"fmt"
)

// CodeAlphabet deliberately omits 0/O and 1/I/L: humans type these codes off
// a TV screen across the room.
const (
	CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	CodeLength   = 6
)

// GenerateCode returns a random pairing code. Uniqueness among live codes is
// enforced separately by the store's unique index plus a retry loop.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(buf), nil
}
