// ABOUTME: Constant-time secret comparison helpers for passwords and credentials
// ABOUTME: Supports plain secrets and bcrypt-hashed authorization passwords

package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// secureCompare reports whether a and b are equal without leaking how far
// they match.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// verifyPassword checks the submitted password against the configured value.
// A configured value with a bcrypt prefix is treated as a password hash.
func verifyPassword(password, configured string) bool {
	if configured == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(password)) == nil
	}
	return secureCompare(password, configured)
}
