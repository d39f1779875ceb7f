package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a salted bcrypt digest from the plaintext. The salt is
// embedded in the encoded digest, so the user record needs no extra field.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored digest.
func VerifyPassword(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// unknownUserDigest is a throwaway digest compared against when no user
// record exists, so the unknown-email path burns the same bcrypt work as a
// wrong password and the two failures are indistinguishable by timing.
var unknownUserDigest = func() string {
	digest, err := bcrypt.GenerateFromPassword([]byte("umbra-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(digest)
}()
