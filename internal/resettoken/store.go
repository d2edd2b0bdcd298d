// Package resettoken implements the in-memory single-use password reset
// token store. Tokens are opaque random strings bound to a user id and an
// expiry; consuming one removes it, so each token authorizes at most one
// reset even under concurrent attempts.
package resettoken

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

const tokenBytes = 32

type entry struct {
	userID    int64
	expiresAt time.Time
}

// Store holds issued tokens behind one mutex. The zero value is not usable;
// construct with NewStore.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]entry
}

// NewStore builds an empty store. A nil clock falls back to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now, tokens: make(map[string]entry)}
}

// CreateToken issues a fresh token for the user, valid for the given
// lifetime. A non-positive lifetime produces a token that is already expired
// and can never be consumed.
func (s *Store) CreateToken(userID int64, lifetime time.Duration) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	s.tokens[token] = entry{userID: userID, expiresAt: s.now().Add(lifetime)}
	s.mu.Unlock()

	return token, nil
}

// ConsumeToken redeems a token, returning the bound user id. The token is
// removed before the expiry check runs, so exactly one caller can ever win a
// given token; expired, unknown and already-consumed tokens are
// indistinguishable.
func (s *Store) ConsumeToken(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok {
		return 0, false
	}
	delete(s.tokens, token)

	if s.now().After(e.expiresAt) || s.now().Equal(e.expiresAt) {
		return 0, false
	}
	return e.userID, true
}

// Len reports how many tokens are currently held, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// StartSweeping removes expired tokens every interval until the context is
// cancelled. The sweep only bounds memory; ConsumeToken is correct without
// it.
func (s *Store) StartSweeping(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, e := range s.tokens {
		if !now.Before(e.expiresAt) {
			delete(s.tokens, token)
		}
	}
}
