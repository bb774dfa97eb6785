package models

import (
	"fmt"
	"time"

	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/requestcontext"
)

// LockOutcome is the result of a soft lock acquire attempt.
type LockOutcome string

const (
	LockAcquired  LockOutcome = "acquired"
	LockReentered LockOutcome = "reentered"
	LockStolen    LockOutcome = "stolen"
	LockBypassed  LockOutcome = "bypassed"
	LockDenied    LockOutcome = "denied"
)

// Writes reports whether the outcome changes the persisted lock holder.
func (o LockOutcome) Writes() bool {
	return o == LockAcquired || o == LockStolen
}

// LockHeldError reports the reviewer holding the soft lock.
type LockHeldError struct {
	Holder string
	Since  time.Time
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("submission is being reviewed by %s since %s", e.Holder, e.Since.Format(time.RFC3339))
}

func (e *LockHeldError) LockHolder() string { return e.Holder }

// LockExpiresAt is when the current hold may be stolen.
func (s *Submission) LockExpiresAt(window time.Duration) time.Time {
	if s.ReviewedBy == "" {
		return time.Time{}
	}
	return s.ReviewStartedAt.Add(window)
}

// HeldBy reports whether actorID holds the soft lock.
func (s *Submission) HeldBy(actorID string) bool {
	return s.ReviewedBy != "" && s.ReviewedBy == actorID
}

// AcquireOutcome evaluates an acquire by actor at now. A hold older than
// window is abandoned and may be stolen. Privileged actors are never
// denied but do not displace an active holder.
func (s *Submission) AcquireOutcome(actor requestcontext.ActorInfo, now time.Time, window time.Duration) (LockOutcome, error) {
	switch {
	case s.ReviewedBy == "":
		return LockAcquired, nil
	case s.ReviewedBy == actor.ID:
		return LockReentered, nil
	case now.Sub(s.ReviewStartedAt) > window:
		return LockStolen, nil
	case actor.Privileged:
		return LockBypassed, nil
	}
	return LockDenied, dErrors.Wrap(&LockHeldError{Holder: s.ReviewedBy, Since: s.ReviewStartedAt},
		dErrors.CodeLockedByOther, "submission is being reviewed by "+s.ReviewedBy)
}

// ApplyAcquire makes actor the holder from now.
func (s *Submission) ApplyAcquire(actor requestcontext.ActorInfo, now time.Time) {
	s.ReviewedBy = actor.ID
	s.ReviewStartedAt = now
	s.UpdatedAt = now
}

// ApplyRelease clears the soft lock.
func (s *Submission) ApplyRelease(now time.Time) {
	s.ReviewedBy = ""
	s.ReviewStartedAt = time.Time{}
	s.UpdatedAt = now
}
