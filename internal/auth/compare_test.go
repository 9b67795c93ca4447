// ABOUTME: Tests for secret comparison helpers
// ABOUTME: Covers plain and bcrypt-hashed password verification

package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerifyPassword_Plain(t *testing.T) {
	if !verifyPassword("hunter2", "hunter2") {
		t.Error("verifyPassword() = false for matching password")
	}
	if verifyPassword("hunter3", "hunter2") {
		t.Error("verifyPassword() = true for wrong password")
	}
	if verifyPassword("", "hunter2") {
		t.Error("verifyPassword() = true for empty password")
	}
	if verifyPassword("anything", "") {
		t.Error("verifyPassword() = true with no configured password")
	}
}

func TestVerifyPassword_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generating hash: %v", err)
	}

	if !verifyPassword("hunter2", string(hash)) {
		t.Error("verifyPassword() = false for matching bcrypt password")
	}
	if verifyPassword("hunter3", string(hash)) {
		t.Error("verifyPassword() = true for wrong bcrypt password")
	}
}

func TestSecureCompare(t *testing.T) {
	if !secureCompare("abc", "abc") {
		t.Error("secureCompare() = false for equal strings")
	}
	if secureCompare("abc", "abd") {
		t.Error("secureCompare() = true for different strings")
	}
	if secureCompare("abc", "abcd") {
		t.Error("secureCompare() = true for different lengths")
	}
}
