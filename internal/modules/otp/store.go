// Package otp implements one-time passcode issuance and verification over
// SMS and email.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// codeTTL is how long an issued code stays valid.
const codeTTL = 5 * time.Minute

type entry struct {
	code    string
	expires time.Time
}

// Store keeps pending codes keyed by destination (mobile number or email
// address). Codes are single use: a successful verification removes the
// entry, and issuing a new code replaces any pending one.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates a new code store
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Put records a code for a destination, replacing any pending one.
func (s *Store) Put(key, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{code: code, expires: s.now().Add(codeTTL)}
}

// Consume verifies a code for a destination. A match removes the entry so
// the code cannot be replayed; a mismatch leaves the pending code in
// place. Expired entries are dropped on sight.
func (s *Store) Consume(key, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if s.now().After(e.expires) {
		delete(s.entries, key)
		return false
	}
	if e.code != code {
		return false
	}

	delete(s.entries, key)
	return true
}

// Sweep drops expired entries. Called periodically so abandoned codes do
// not accumulate.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, key)
		}
	}
}

// GenerateCode returns a random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
