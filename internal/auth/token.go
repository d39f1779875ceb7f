package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenEntropyBytes is the raw entropy of an issued token before encoding.
const tokenEntropyBytes = 32

// GenerateToken produces a URL-safe opaque bearer token with 256 bits of
// entropy from a cryptographically secure source. No uniqueness check is made
// against the token store; the collision probability is negligible.
func GenerateToken() (string, error) {
	raw := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
