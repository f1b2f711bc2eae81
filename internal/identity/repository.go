package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "otp:challenge:"

// ChallengeRepository holds pending challenges between the two steps of a flow.
type ChallengeRepository interface {
	// Save stores the challenge. A zero ttl keeps it until Delete.
	Save(ctx context.Context, c Challenge, ttl time.Duration) error
	Get(ctx context.Context, id string) (Challenge, error)
	Delete(ctx context.Context, id string) error
}

// RedisChallengeRepository keeps challenges as JSON under otp:challenge:<id>.
type RedisChallengeRepository struct {
	client *redis.Client
}

// NewRedisChallengeRepository builds a Redis-backed challenge repository.
func NewRedisChallengeRepository(client *redis.Client) *RedisChallengeRepository {
	return &RedisChallengeRepository{client: client}
}

// Save writes the challenge.
func (r *RedisChallengeRepository) Save(ctx context.Context, c Challenge, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, challengeKeyPrefix+c.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}

// Get loads a challenge; a missing or expired key yields ErrChallengeNotFound.
func (r *RedisChallengeRepository) Get(ctx context.Context, id string) (Challenge, error) {
	data, err := r.client.Get(ctx, challengeKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, ErrChallengeNotFound
	}
	if err != nil {
		return Challenge{}, fmt.Errorf("load challenge: %w", err)
	}
	var c Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return Challenge{}, fmt.Errorf("decode challenge: %w", err)
	}
	return c, nil
}

// Delete removes a challenge.
func (r *RedisChallengeRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, challengeKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
