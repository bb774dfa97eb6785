// Package store persists customer identities and their policy links.
package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"kycreview/internal/identity/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
)

// InMemoryStore is a thread-safe identity store for dev mode and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[id.IdentityKey]*models.Identity
	links      map[id.PolicyNumber]models.PolicyLink
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		identities: make(map[id.IdentityKey]*models.Identity),
		links:      make(map[id.PolicyNumber]models.PolicyLink),
	}
}

func (s *InMemoryStore) FindByKey(_ context.Context, key id.IdentityKey) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.identities[key]
	if !ok {
		return nil, fmt.Errorf("identity %s: %w", key, sentinel.ErrNotFound)
	}
	cp := *ident
	return &cp, nil
}

func (s *InMemoryStore) FindByPolicy(ctx context.Context, policyNo id.PolicyNumber) (*models.Identity, error) {
	s.mu.RLock()
	link, ok := s.links[policyNo]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyNo, sentinel.ErrNotFound)
	}
	return s.FindByKey(ctx, link.IdentityKey)
}

// FindLinkedKey returns the identity of the first policy in policyNos that
// is already linked.
func (s *InMemoryStore) FindLinkedKey(_ context.Context, policyNos []id.PolicyNumber) (id.IdentityKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pn := range policyNos {
		if link, ok := s.links[pn]; ok {
			return link.IdentityKey, nil
		}
	}
	return "", fmt.Errorf("no linked policy: %w", sentinel.ErrNotFound)
}

// GetOrCreate inserts ident unless an identity with the same key exists,
// and returns the stored identity.
func (s *InMemoryStore) GetOrCreate(_ context.Context, ident *models.Identity) (*models.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.identities[ident.Key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *ident
	s.identities[ident.Key] = &cp
	out := cp
	return &out, true, nil
}

func (s *InMemoryStore) SetCredentialIfEmpty(_ context.Context, key id.IdentityKey, hash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[key]
	if !ok {
		return false, fmt.Errorf("identity %s: %w", key, sentinel.ErrNotFound)
	}
	if ident.CredentialHash != "" {
		return false, nil
	}
	ident.CredentialHash = hash
	ident.UpdatedAt = now
	return true, nil
}

// UpsertLinks points every link at its identity; existing links are repointed.
func (s *InMemoryStore) UpsertLinks(_ context.Context, links []models.PolicyLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range links {
		if _, ok := s.identities[l.IdentityKey]; !ok {
			return fmt.Errorf("identity %s: %w", l.IdentityKey, sentinel.ErrNotFound)
		}
	}
	for _, l := range links {
		s.links[l.PolicyNo] = l
	}
	return nil
}

func (s *InMemoryStore) ListPolicies(_ context.Context, key id.IdentityKey) ([]models.PolicyLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PolicyLink
	for _, l := range s.links {
		if l.IdentityKey == key {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b models.PolicyLink) int {
		return cmp.Compare(a.PolicyNo, b.PolicyNo)
	})
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, key id.IdentityKey, status models.KycStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[key]
	if !ok {
		return fmt.Errorf("identity %s: %w", key, sentinel.ErrNotFound)
	}
	ident.KycStatus = status
	ident.UpdatedAt = now
	return nil
}
