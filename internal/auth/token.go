package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// SessionTTL is how long an issued session token stays valid.
	SessionTTL = 7 * 24 * time.Hour

	// tokenBytes is the amount of randomness in a session token (hex encoded to 64 chars).
	tokenBytes = 32
)

// GenerateToken returns a new opaque session token.
// It is pure randomness and carries nothing about the user or session.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenExpiration returns the expiry for a session issued at now.
func TokenExpiration(now time.Time) time.Time {
	return now.Add(SessionTTL)
}

// Fingerprint returns a short SHA256 digest of a token for log correlation.
// Raw tokens are bearer credentials and must never be logged.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
