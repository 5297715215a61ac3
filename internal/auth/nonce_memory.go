package auth

import (
	"context"
	"sync"
	"time"
)

type memoryNonceStore struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
}

// NewMemoryNonceStore builds an in-memory nonce store for testing and
// dev-mode runs without a database.
func NewMemoryNonceStore() NonceStore {
	return &memoryNonceStore{challenges: make(map[string]*Challenge)}
}

func nonceKey(wallet, nonce string) string {
	return wallet + "\x00" + nonce
}

func (s *memoryNonceStore) Issue(_ context.Context, wallet string) (Challenge, error) {
	nonce, err := generateNonce()
	if err != nil {
		return Challenge{}, infraError(CodeNonceInsertFailed, "Failed to generate nonce. Please try again.", err)
	}

	now := time.Now().UTC()
	ch := Challenge{
		Wallet:    wallet,
		Nonce:     nonce,
		CreatedAt: now,
		ExpiresAt: now.Add(NonceTTL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := ch
	s.challenges[nonceKey(wallet, nonce)] = &stored
	return ch, nil
}

func (s *memoryNonceStore) Consume(_ context.Context, wallet, nonce string) (Challenge, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[nonceKey(wallet, nonce)]
	if !ok || ch.UsedAt != nil {
		return Challenge{}, ErrNonceNotFound
	}

	// Mark used before the expiry check, mirroring the Postgres UPDATE: an
	// expired challenge is burnt too.
	ch.UsedAt = &now

	if now.After(ch.ExpiresAt) {
		return Challenge{}, ErrNonceExpired
	}

	out := *ch
	return out, nil
}
