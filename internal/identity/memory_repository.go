package identity

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	challenge Challenge
	expiresAt time.Time
}

type memoryRepository struct {
	mu         sync.Mutex
	challenges map[string]memoryEntry
	now        func() time.Time
}

// NewMemoryRepository builds an in-memory challenge repository.
func NewMemoryRepository() ChallengeRepository {
	return &memoryRepository{challenges: make(map[string]memoryEntry), now: time.Now}
}

func (r *memoryRepository) Save(_ context.Context, c Challenge, ttl time.Duration) error {
	entry := memoryEntry{challenge: c}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challenges[c.ID] = entry
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.challenges[id]
	if !ok {
		return Challenge{}, ErrChallengeNotFound
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		delete(r.challenges, id)
		return Challenge{}, ErrChallengeNotFound
	}
	return entry.challenge, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.challenges, id)
	return nil
}
