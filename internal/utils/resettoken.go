package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// GenerateResetToken returns a high-entropy raw reset token and its SHA-256
// hex digest. The raw token goes out of band to the user exactly once; only
// the digest is ever stored.
func GenerateResetToken() (raw string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashResetToken(raw), nil
}

// HashResetToken derives the stored digest for a presented raw token.
// Verification always compares digests, never raw tokens.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
