package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	idmodels "kycreview/internal/identity/models"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/requestcontext"
)

// Status is the review status of a submission.
type Status = idmodels.KycStatus

const (
	StatusNotInitiated = idmodels.KycStatusNotInitiated
	StatusPending      = idmodels.KycStatusPending
	StatusIncomplete   = idmodels.KycStatusIncomplete
	StatusVerified     = idmodels.KycStatusVerified
	StatusRejected     = idmodels.KycStatusRejected
)

// Submission is the single KYC record of one identity.
//
// Invariants:
//   - IsLock implies Status is VERIFIED and LockedBy/LockedAt are set
//   - Version grows by exactly one on every persisted write
//   - REJECTED and INCOMPLETE carry a non-empty RejectionComment
//   - ReviewedBy/ReviewStartedAt are the advisory soft lock; empty means unlocked
type Submission struct {
	ID               id.SubmissionID
	IdentityKey      id.IdentityKey
	Status           Status
	Form             FormData
	RawBackup        json.RawMessage
	IsLock           bool
	LockedBy         string
	LockedAt         time.Time
	ReviewedBy       string
	ReviewStartedAt  time.Time
	Version          int64
	RejectionComment string
	SubmittedBy      requestcontext.ActorType
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewSubmission builds the first version of an identity's submission.
func NewSubmission(key id.IdentityKey, form FormData, raw json.RawMessage, actor requestcontext.ActorInfo, now time.Time) *Submission {
	return &Submission{
		ID:          id.NewSubmissionID(),
		IdentityKey: key,
		Status:      StatusPending,
		Form:        form,
		RawBackup:   raw,
		Version:     1,
		SubmittedBy: actor.Type,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy.
func (s *Submission) Clone() *Submission {
	cp := *s
	if s.RawBackup != nil {
		cp.RawBackup = append(json.RawMessage(nil), s.RawBackup...)
	}
	return &cp
}

// CanCustomerEdit reports whether the owner may change the form.
func (s *Submission) CanCustomerEdit() bool {
	return s.Status != StatusPending && s.Status != StatusVerified && !s.IsLock
}

// CanResubmit checks that actor may replace the form and return the record to PENDING.
func (s *Submission) CanResubmit(actor requestcontext.ActorInfo) error {
	if s.IsLock && !actor.Privileged {
		return dErrors.New(dErrors.CodeRecordLocked, "submission is verified and locked")
	}
	switch s.Status {
	case StatusNotInitiated, StatusRejected, StatusIncomplete:
		return nil
	case StatusPending:
		if actor.Type.IsStaff() {
			return nil
		}
		return dErrors.New(dErrors.CodeInvalidTransition, "submission is awaiting review")
	case StatusVerified:
		if actor.Privileged {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeInvalidTransition,
		fmt.Sprintf("cannot resubmit from %s", s.Status))
}

// ApplyResubmit replaces the form and lands the record in PENDING.
func (s *Submission) ApplyResubmit(form FormData, raw json.RawMessage, actor requestcontext.ActorInfo, now time.Time) {
	s.Form = form
	s.RawBackup = raw
	s.Status = StatusPending
	s.clearFreeze()
	s.SubmittedBy = actor.Type
	s.UpdatedAt = now
}

// Decision is a reviewer's verdict on a submission.
type Decision struct {
	Status  Status
	Comment string
	// Lock freezes the record; required with VERIFIED.
	Lock bool
	// Form optionally carries reviewer corrections.
	Form *FormData
}

func isDecisionStatus(s Status) bool {
	return s == StatusVerified || s == StatusRejected || s == StatusIncomplete
}

// CanApplyDecision validates a decision against the review state machine.
// Re-saving the current decision status is allowed so reviewers can correct fields.
func (s *Submission) CanApplyDecision(actor requestcontext.ActorInfo, d Decision) error {
	if !isDecisionStatus(d.Status) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("%s is not a review decision", d.Status))
	}
	if s.IsLock && !actor.Privileged {
		return dErrors.New(dErrors.CodeRecordLocked, "submission is verified and locked")
	}
	if s.Status != StatusPending && s.Status != d.Status {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move from %s to %s", s.Status, d.Status))
	}
	switch d.Status {
	case StatusVerified:
		if !d.Lock && !actor.Privileged {
			return dErrors.New(dErrors.CodeInvalidTransition, "verification must lock the record")
		}
	case StatusRejected, StatusIncomplete:
		if strings.TrimSpace(d.Comment) == "" {
			return dErrors.New(dErrors.CodeMissingComment,
				fmt.Sprintf("a comment is required to mark a submission %s", d.Status))
		}
	}
	return nil
}

// ApplyDecision transitions the record. Call CanApplyDecision first.
func (s *Submission) ApplyDecision(actor requestcontext.ActorInfo, d Decision, now time.Time) {
	if d.Form != nil {
		s.Form = *d.Form
	}
	s.Status = d.Status
	switch d.Status {
	case StatusVerified:
		s.RejectionComment = ""
		if d.Lock && !s.IsLock {
			s.IsLock = true
			s.LockedBy = actor.ID
			s.LockedAt = now
		}
	case StatusRejected, StatusIncomplete:
		s.RejectionComment = strings.TrimSpace(d.Comment)
		s.clearFreeze()
	}
	s.UpdatedAt = now
}

// CanUnlock checks a privileged unfreeze of a verified record.
func (s *Submission) CanUnlock(actor requestcontext.ActorInfo) error {
	if !actor.Privileged {
		return dErrors.New(dErrors.CodeForbidden, "only privileged reviewers may unlock a submission")
	}
	if !s.IsLock && s.Status != StatusVerified {
		return dErrors.New(dErrors.CodeInvalidTransition, "submission is not verified")
	}
	return nil
}

// ApplyUnlock clears the freeze and returns the record to PENDING.
func (s *Submission) ApplyUnlock(now time.Time) {
	s.Status = StatusPending
	s.clearFreeze()
	s.UpdatedAt = now
}

func (s *Submission) clearFreeze() {
	s.IsLock = false
	s.LockedBy = ""
	s.LockedAt = time.Time{}
}

// ReviewChanges lists the non-form fields a review step mutated.
func ReviewChanges(before, after *Submission) []FieldChange {
	var out []FieldChange
	if before.RejectionComment != after.RejectionComment {
		out = append(out, FieldChange{Field: "rejection_comment", OldValue: before.RejectionComment, NewValue: after.RejectionComment})
	}
	if before.IsLock != after.IsLock {
		out = append(out, FieldChange{Field: "is_lock", OldValue: strconv.FormatBool(before.IsLock), NewValue: strconv.FormatBool(after.IsLock)})
	}
	return out
}
