package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	id "kycreview/pkg/domain"
	audit "kycreview/pkg/platform/audit"
)

type recordingSink struct {
	mu      sync.Mutex
	batches [][]audit.Entry
	err     error
}

func (s *recordingSink) Publish(_ context.Context, entries []audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, entries)
	return s.err
}

func batch() []audit.Entry {
	return []audit.Entry{{ID: id.NewEntryID(), SubmissionID: id.NewSubmissionID(), Action: audit.ActionSubmitted}}
}

func TestWorker_DrainsOnClose(t *testing.T) {
	sink := &recordingSink{}
	w := NewWorker(sink, 16, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.Start()

	for range 10 {
		assert.True(t, w.Enqueue(batch()))
	}
	w.Close()

	assert.Len(t, sink.batches, 10)
}

func TestWorker_SinkErrorDoesNotStopLoop(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	w := NewWorker(sink, 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.Start()

	w.Enqueue(batch())
	w.Enqueue(batch())
	w.Close()

	assert.Len(t, sink.batches, 2)
}

func TestWorker_EnqueueReportsFullBuffer(t *testing.T) {
	w := NewWorker(&recordingSink{}, 1, nil)
	// loop not started, so the second batch cannot fit
	assert.True(t, w.Enqueue(batch()))
	assert.False(t, w.Enqueue(batch()))
}

func TestWorker_CloseIsIdempotent(t *testing.T) {
	w := NewWorker(&recordingSink{}, 1, nil)
	w.Start()
	w.Close()
	assert.NotPanics(t, w.Close)
}

func TestWorker_EnqueueAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{}
	w := NewWorker(sink, 4, nil)
	w.Start()
	w.Close()

	assert.NotPanics(t, func() {
		assert.False(t, w.Enqueue(batch()))
	})
	assert.Empty(t, sink.batches)
}

func TestWorker_ConcurrentEnqueueAndClose(t *testing.T) {
	w := NewWorker(&recordingSink{}, 8, nil)
	w.Start()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				w.Enqueue(batch())
			}
		}()
	}
	assert.NotPanics(t, w.Close)
	wg.Wait()
}
