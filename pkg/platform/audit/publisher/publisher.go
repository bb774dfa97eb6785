// Package publisher records change log entries on behalf of the services.
package publisher

import (
	"context"
	"log/slog"

	id "kycreview/pkg/domain"
	audit "kycreview/pkg/platform/audit"
)

// FailureCounter counts entries that could not be persisted.
type FailureCounter interface {
	IncrementAuditWriteFailure()
}

// Stream accepts committed batches for asynchronous delivery.
type Stream interface {
	Enqueue(entries []audit.Entry) bool
}

// Recorder persists entries and fans them out to the stream. Record never
// returns an error: a mutation that has committed stays committed, and a
// lost entry is surfaced as an integrity defect in logs and metrics.
type Recorder struct {
	store   audit.Store
	stream  Stream
	logger  *slog.Logger
	metrics FailureCounter
}

type Option func(*Recorder)

func WithStream(s Stream) Option {
	return func(r *Recorder) { r.stream = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

func WithMetrics(m FailureCounter) Option {
	return func(r *Recorder) { r.metrics = m }
}

func NewRecorder(store audit.Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends entries to the store and, once stored, enqueues them for the stream.
func (r *Recorder) Record(ctx context.Context, entries ...audit.Entry) {
	if len(entries) == 0 {
		return
	}
	if err := r.store.Append(ctx, entries...); err != nil {
		r.logger.ErrorContext(ctx, "change log write failed",
			"error", err,
			"integrity_defect", true,
			"submission_id", entries[0].SubmissionID.String(),
			"action", string(entries[0].Action),
			"entries", len(entries),
		)
		if r.metrics != nil {
			for range entries {
				r.metrics.IncrementAuditWriteFailure()
			}
		}
		return
	}
	if r.stream != nil && !r.stream.Enqueue(entries) {
		r.logger.WarnContext(ctx, "change log stream full or closed, batch dropped",
			"submission_id", entries[0].SubmissionID.String(),
			"entries", len(entries),
		)
	}
}

// History returns a submission's entries newest first.
func (r *Recorder) History(ctx context.Context, submissionID id.SubmissionID) ([]audit.Entry, error) {
	entries, err := r.store.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	audit.SortNewestFirst(entries)
	return entries, nil
}
