package memory

import (
	"context"
	"slices"
	"sync"

	id "kycreview/pkg/domain"
	audit "kycreview/pkg/platform/audit"
)

// InMemoryStore keeps change log entries per submission for tests and dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	entries map[id.SubmissionID][]audit.Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.SubmissionID][]audit.Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entries ...audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.seq++
		e.Seq = s.seq
		s.entries[e.SubmissionID] = append(s.entries[e.SubmissionID], e)
	}
	return nil
}

// ListBySubmission returns entries newest first.
func (s *InMemoryStore) ListBySubmission(_ context.Context, submissionID id.SubmissionID) ([]audit.Entry, error) {
	s.mu.RLock()
	out := slices.Clone(s.entries[submissionID])
	s.mu.RUnlock()

	audit.SortNewestFirst(out)
	return out, nil
}

// Len returns the number of stored entries across all submissions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		n += len(e)
	}
	return n
}
