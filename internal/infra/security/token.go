package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken returns the token carried by an Authorization header value.
// Only the exact "Bearer " prefix is accepted; anything else reports false.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// HashToken calculates a SHA-256 hash of the provided value.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
