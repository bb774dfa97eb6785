package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "kycreview/pkg/platform/audit"
)

const publishTimeout = 5 * time.Second

// Worker forwards committed change log batches to a Sink from a buffered
// channel so request paths never wait on the stream.
type Worker struct {
	sink   audit.Sink
	inbox  chan []audit.Entry
	logger *slog.Logger
	wg     sync.WaitGroup

	// mu guards closed and the close of inbox against in-flight sends.
	mu     sync.RWMutex
	closed bool
}

func NewWorker(sink audit.Sink, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: make(chan []audit.Entry, buffer), logger: logger}
}

// Start launches the forwarding loop. Call Close to drain and stop it.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for batch := range w.inbox {
			w.publish(batch)
		}
	}()
}

// Enqueue hands a batch to the loop; it reports false when the buffer is
// full or the worker is closed.
func (w *Worker) Enqueue(entries []audit.Entry) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.inbox <- entries:
		return true
	default:
		return false
	}
}

// Close stops accepting batches and waits until queued ones are published.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.inbox)
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Worker) publish(batch []audit.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.sink.Publish(ctx, batch); err != nil {
		w.logger.Warn("change log stream publish failed",
			"error", err,
			"entries", len(batch),
			"submission_id", batch[0].SubmissionID.String(),
		)
	}
}
