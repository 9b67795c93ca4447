// ABOUTME: In-memory store for single-use OAuth authorization codes
// ABOUTME: Redemption is atomic so concurrent attempts yield exactly one success

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// codeTTL is how long an authorization code stays redeemable after issuance.
const codeTTL = 10 * time.Minute

// authCode is a single issued authorization code. Owned exclusively by the
// CodeStore; callers only ever hold the opaque code string.
type authCode struct {
	clientID    string
	redirectURI string
	expiresAt   time.Time
	used        bool
}

// CodeStore holds short-lived, single-use authorization codes keyed by an
// opaque random string. All operations are safe for concurrent use.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]*authCode
	now   func() time.Time
}

// NewCodeStore creates an empty code store.
func NewCodeStore() *CodeStore {
	return &CodeStore{
		codes: make(map[string]*authCode),
		now:   time.Now,
	}
}

// Issue generates a new authorization code bound to the given client and
// redirect URI. Expired entries are swept opportunistically on each call.
func (s *CodeStore) Issue(clientID, redirectURI string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating authorization code: %w", err)
	}
	code := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.codes[code] = &authCode{
		clientID:    clientID,
		redirectURI: redirectURI,
		expiresAt:   s.now().Add(codeTTL),
	}
	return code, nil
}

// Redeem marks the code as used and returns true if it is present, unexpired,
// unused, and bound to the given client and redirect URI. The check and the
// used-flag mutation happen under one lock, so concurrent redemption attempts
// for the same code see exactly one success.
//
// A mismatched client or redirect URI does not consume the code.
func (s *CodeStore) Redeem(code, clientID, redirectURI string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok {
		return false
	}
	if s.now().After(c.expiresAt) {
		delete(s.codes, code)
		return false
	}
	if c.used {
		delete(s.codes, code)
		return false
	}
	if c.clientID != clientID || c.redirectURI != redirectURI {
		return false
	}

	c.used = true
	return true
}

// Sweep removes all expired codes. Issue already does this opportunistically;
// Sweep exists for callers that want eager reclamation.
func (s *CodeStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
}

// sweepLocked removes expired entries. Caller must hold s.mu.
func (s *CodeStore) sweepLocked() {
	now := s.now()
	for code, c := range s.codes {
		if now.After(c.expiresAt) {
			delete(s.codes, code)
		}
	}
}

// size returns the number of stored codes. Test helper.
func (s *CodeStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}
