// Package audit is the append-only change log of KYC submissions.
//
// Every mutation path records one Entry per status change and one per
// mutated field. Entries are immutable once written; the store is the
// record of truth and the optional stream is a best-effort copy.
package audit

import (
	"cmp"
	"context"
	"slices"
	"time"

	id "kycreview/pkg/domain"
	"kycreview/pkg/requestcontext"
)

// Action classifies a change log entry.
type Action string

const (
	ActionSubmitted     Action = "SUBMITTED"
	ActionStatusChanged Action = "STATUS_CHANGED"
	ActionFieldChanged  Action = "FIELD_CHANGED"
	ActionReviewStarted Action = "REVIEW_STARTED"
	ActionReviewEnded   Action = "REVIEW_ENDED"
	ActionUnlocked      Action = "UNLOCKED"
)

// Entry is one immutable change log row.
type Entry struct {
	ID           id.EntryID
	Seq          int64 // store-assigned insertion order, breaks timestamp ties
	SubmissionID id.SubmissionID
	Action       Action
	Field        string
	OldValue     string
	NewValue     string
	Comment      string
	ActorType    requestcontext.ActorType
	ActorID      string
	Timestamp    time.Time
	RequestID    string
	ClientIP     string
	UserAgent    string
}

// NewEntry builds an entry for submissionID attributed to actor, enriched
// with the request metadata found in ctx.
func NewEntry(ctx context.Context, submissionID id.SubmissionID, action Action, actor requestcontext.ActorInfo) Entry {
	return Entry{
		ID:           id.NewEntryID(),
		SubmissionID: submissionID,
		Action:       action,
		ActorType:    actor.Type,
		ActorID:      actor.ID,
		Timestamp:    requestcontext.Now(ctx),
		RequestID:    requestcontext.RequestID(ctx),
		ClientIP:     requestcontext.ClientIP(ctx),
		UserAgent:    requestcontext.UserAgent(ctx),
	}
}

// FieldChange returns a copy of e describing a change of field from old to new.
func (e Entry) FieldChange(field, oldValue, newValue string) Entry {
	e.ID = id.NewEntryID()
	e.Action = ActionFieldChanged
	e.Field = field
	e.OldValue = oldValue
	e.NewValue = newValue
	return e
}

// Store persists entries. Append writes all entries or none.
type Store interface {
	Append(ctx context.Context, entries ...Entry) error
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]Entry, error)
}

// Sink receives committed entries for downstream consumers (compliance
// archive, analytics). Delivery is best-effort.
type Sink interface {
	Publish(ctx context.Context, entries []Entry) error
}

// SortNewestFirst orders entries by timestamp descending, then by
// insertion order descending.
func SortNewestFirst(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.Seq, a.Seq)
	})
}
