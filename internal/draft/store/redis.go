package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kycreview/internal/draft/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
)

const draftKeyPrefix = "kyc:draft:"

// RedisStore keeps one JSON value per identity with a TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func draftKey(key id.IdentityKey) string {
	return draftKeyPrefix + string(key)
}

// Save overwrites the draft and restarts its TTL.
func (s *RedisStore) Save(ctx context.Context, d *models.Draft, ttl time.Duration) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(d.IdentityKey), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key id.IdentityKey) (*models.Draft, error) {
	payload, err := s.client.Get(ctx, draftKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("draft for %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d models.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *RedisStore) Delete(ctx context.Context, key id.IdentityKey) error {
	if err := s.client.Del(ctx, draftKey(key)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
