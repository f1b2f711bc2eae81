package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]UserProfile
	requests map[string]BloodRequest
	now      func() time.Time
}

// NewMemory builds an in-process store for tests and local development.
func NewMemory() Store {
	return &memoryStore{
		users:    make(map[string]UserProfile),
		requests: make(map[string]BloodRequest),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStore) GetUser(_ context.Context, email string) (UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return UserProfile{}, ErrNotFound
	}
	return user, nil
}

func (s *memoryStore) UserExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[email]
	return ok, nil
}

func (s *memoryStore) CreateUser(_ context.Context, profile UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[profile.Email]; exists {
		return ErrAlreadyExists
	}
	profile.UID = profile.Email
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now()
	}
	s.users[profile.Email] = profile
	return nil
}

func (s *memoryStore) SetDonationWillingness(_ context.Context, email string, willing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return ErrNotFound
	}
	user.WillingToDonate = willing
	s.users[email] = user
	return nil
}

func (s *memoryStore) ListWillingDonors(_ context.Context) ([]UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donors := make([]UserProfile, 0)
	for _, user := range s.users {
		if user.WillingToDonate {
			donors = append(donors, user)
		}
	}
	sort.Slice(donors, func(i, j int) bool { return donors[i].Email < donors[j].Email })
	return donors, nil
}

func (s *memoryStore) GetRequest(_ context.Context, id string) (BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return BloodRequest{}, ErrNotFound
	}
	return req, nil
}

func (s *memoryStore) ListActiveRequests(_ context.Context) ([]BloodRequest, error) {
	return s.filterRequests(func(r BloodRequest) bool { return r.Status == StatusActive }), nil
}

func (s *memoryStore) ListRequestsByOwner(_ context.Context, email string) ([]BloodRequest, error) {
	return s.filterRequests(func(r BloodRequest) bool { return r.UserEmail == email }), nil
}

func (s *memoryStore) filterRequests(keep func(BloodRequest) bool) []BloodRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BloodRequest, 0)
	for _, req := range s.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *memoryStore) CreateRequest(_ context.Context, payload RequestPayload, ownerEmail string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.requests[id] = newRequest(id, payload, ownerEmail, s.now())
	return id, nil
}

func (s *memoryStore) UpdateRequest(_ context.Context, id string, payload RequestPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.apply(payload)
	s.requests[id] = req
	return nil
}

func (s *memoryStore) DeleteRequest(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }
