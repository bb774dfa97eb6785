package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"kycreview/internal/submission/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
)

// InMemoryStore keeps submissions in process for dev mode and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	byID       map[id.SubmissionID]*models.Submission
	byIdentity map[id.IdentityKey]id.SubmissionID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[id.SubmissionID]*models.Submission),
		byIdentity: make(map[id.IdentityKey]id.SubmissionID),
	}
}

// Create stores the first version of a submission. An identity already
// owning one yields sentinel.ErrConflict.
func (s *InMemoryStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byIdentity[sub.IdentityKey]; exists {
		return fmt.Errorf("submission for %s: %w", sub.IdentityKey, sentinel.ErrConflict)
	}
	s.byID[sub.ID] = sub.Clone()
	s.byIdentity[sub.IdentityKey] = sub.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, subID id.SubmissionID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[subID]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", subID, sentinel.ErrNotFound)
	}
	return sub.Clone(), nil
}

func (s *InMemoryStore) FindByIdentity(ctx context.Context, key id.IdentityKey) (*models.Submission, error) {
	s.mu.RLock()
	subID, ok := s.byIdentity[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("submission for %s: %w", key, sentinel.ErrNotFound)
	}
	return s.FindByID(ctx, subID)
}

// Execute runs validate and mutate under the store lock and writes the
// record with its version incremented when mutate reports a change.
func (s *InMemoryStore) Execute(_ context.Context, subID id.SubmissionID, validate ValidateFunc, mutate MutateFunc) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[subID]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", subID, sentinel.ErrNotFound)
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	if !mutate(working) {
		return current.Clone(), nil
	}
	working.Version = current.Version + 1
	s.byID[subID] = working
	return working.Clone(), nil
}

// List returns matching submissions, most recently updated first.
func (s *InMemoryStore) List(_ context.Context, filter ListFilter) ([]*models.Submission, error) {
	filter = filter.Normalized()

	s.mu.RLock()
	out := make([]*models.Submission, 0, len(s.byID))
	for _, sub := range s.byID {
		if filter.Status == "" || sub.Status == filter.Status {
			out = append(out, sub.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Submission) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, sub := range s.byID {
		counts[sub.Status]++
	}
	return counts, nil
}
