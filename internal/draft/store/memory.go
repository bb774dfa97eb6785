// Package store keeps drafts in Redis or, in dev mode, in process.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kycreview/internal/draft/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
)

type memoryEntry struct {
	draft     models.Draft
	expiresAt time.Time
}

// InMemoryStore expires drafts lazily on read.
type InMemoryStore struct {
	mu     sync.Mutex
	drafts map[id.IdentityKey]memoryEntry
	now    func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{drafts: make(map[id.IdentityKey]memoryEntry), now: time.Now}
}

func (s *InMemoryStore) Save(_ context.Context, d *models.Draft, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	cp.Form = append(json.RawMessage(nil), d.Form...)
	s.drafts[d.IdentityKey] = memoryEntry{draft: cp, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, key id.IdentityKey) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.drafts, key)
		return nil, fmt.Errorf("draft for %s: %w", key, sentinel.ErrNotFound)
	}
	cp := e.draft
	cp.Form = append(json.RawMessage(nil), e.draft.Form...)
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, key id.IdentityKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}
