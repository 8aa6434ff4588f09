package blacklist

import (
	"sync"
	"time"
)

// Store is the denylist of access tokens revoked before their natural expiry.
// Entries carry their own TTL so pruning converges regardless of how many
// instances run it.
type Store interface {
	Add(accessToken string, ttl time.Duration) error
	IsBlacklisted(accessToken string) (bool, error)
	PruneExpiredTokens() (int64, error)
}

type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Add(accessToken string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[accessToken] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryStore) IsBlacklisted(accessToken string) (bool, error) {
	m.mu.RLock()
	expiresAt, exists := m.tokens[accessToken]
	m.mu.RUnlock()

	if !exists {
		return false, nil
	}

	if time.Now().After(expiresAt) {
		m.mu.Lock()
		delete(m.tokens, accessToken)
		m.mu.Unlock()
		return false, nil
	}

	return true, nil
}

func (m *MemoryStore) PruneExpiredTokens() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var pruned int64

	for accessToken, expiresAt := range m.tokens {
		if now.After(expiresAt) {
			delete(m.tokens, accessToken)
			pruned++
		}
	}

	return pruned, nil
}
