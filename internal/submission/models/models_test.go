package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/requestcontext"
)

var (
	t0       = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	reviewA  = requestcontext.ActorInfo{Type: requestcontext.ActorAdmin, ID: "reviewer-a"}
	reviewB  = requestcontext.ActorInfo{Type: requestcontext.ActorAdmin, ID: "reviewer-b"}
	super    = requestcontext.ActorInfo{Type: requestcontext.ActorAdmin, ID: "supervisor", Privileged: true}
	customer = requestcontext.ActorInfo{Type: requestcontext.ActorUser, ID: "CUS0123456789ab", IdentityKey: "CUS0123456789ab"}
)

func validForm() FormData {
	return FormData{FirstName: "Ram", LastName: "Sharma", DOB: "1990-01-15", Mobile: "9800000001", AnnualIncome: decimal.NewFromInt(500000)}
}

func pending() *Submission {
	return NewSubmission("CUS0123456789ab", validForm(), nil, customer, t0)
}

func TestSoftLockTimeoutBoundary(t *testing.T) {
	const window = 10 * time.Minute
	s := pending()
	s.ApplyAcquire(reviewA, t0)

	tests := []struct {
		name    string
		at      time.Time
		outcome LockOutcome
	}{
		{"within window", t0.Add(5 * time.Minute), LockDenied},
		{"exactly at window", t0.Add(window), LockDenied},
		{"just past window", t0.Add(window + time.Nanosecond), LockStolen},
		{"long abandoned", t0.Add(11 * time.Minute), LockStolen},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := s.AcquireOutcome(reviewB, tc.at, window)
			assert.Equal(t, tc.outcome, outcome)
			if tc.outcome == LockDenied {
				require.True(t, dErrors.HasCode(err, dErrors.CodeLockedByOther))
				var held *LockHeldError
				require.True(t, errors.As(err, &held))
				assert.Equal(t, "reviewer-a", held.LockHolder())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSoftLockOutcomes(t *testing.T) {
	s := pending()

	outcome, err := s.AcquireOutcome(reviewA, t0, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, LockAcquired, outcome)
	assert.True(t, outcome.Writes())
	s.ApplyAcquire(reviewA, t0)

	outcome, err = s.AcquireOutcome(reviewA, t0.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, LockReentered, outcome)
	assert.False(t, outcome.Writes())

	outcome, err = s.AcquireOutcome(super, t0.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, LockBypassed, outcome)
	assert.False(t, outcome.Writes())

	assert.True(t, s.HeldBy("reviewer-a"))
	assert.Equal(t, t0.Add(time.Minute), s.LockExpiresAt(time.Minute))
	s.ApplyRelease(t0)
	assert.False(t, s.HeldBy("reviewer-a"))
	assert.True(t, s.LockExpiresAt(time.Minute).IsZero())
}

func TestDecisionRules(t *testing.T) {
	tests := []struct {
		name  string
		actor requestcontext.ActorInfo
		d     Decision
		code  dErrors.Code
	}{
		{"verify without lock", reviewA, Decision{Status: StatusVerified}, dErrors.CodeInvalidTransition},
		{"privileged verify without lock", super, Decision{Status: StatusVerified}, ""},
		{"verify with lock", reviewA, Decision{Status: StatusVerified, Lock: true}, ""},
		{"reject empty comment", reviewA, Decision{Status: StatusRejected, Comment: ""}, dErrors.CodeMissingComment},
		{"reject blank comment", reviewA, Decision{Status: StatusRejected, Comment: "   "}, dErrors.CodeMissingComment},
		{"incomplete empty comment", super, Decision{Status: StatusIncomplete}, dErrors.CodeMissingComment},
		{"reject with comment", reviewA, Decision{Status: StatusRejected, Comment: "Missing citizenship doc"}, ""},
		{"pending is not a decision", reviewA, Decision{Status: StatusPending}, dErrors.CodeInvalidTransition},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := pending().CanApplyDecision(tc.actor, tc.d)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestVerifyLocksAndFreezes(t *testing.T) {
	s := pending()
	before := s.Clone()
	s.ApplyDecision(reviewA, Decision{Status: StatusVerified, Lock: true}, t0)

	assert.True(t, s.IsLock)
	assert.Equal(t, "reviewer-a", s.LockedBy)
	assert.Equal(t, t0, s.LockedAt)
	assert.Equal(t, []FieldChange{{Field: "is_lock", OldValue: "false", NewValue: "true"}}, ReviewChanges(before, s))

	err := s.CanApplyDecision(reviewB, Decision{Status: StatusRejected, Comment: "x"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRecordLocked))
	err = s.CanResubmit(customer)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRecordLocked))

	err = s.CanApplyDecision(super, Decision{Status: StatusRejected, Comment: "x"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition), "locked record must be unlocked first")
	assert.NoError(t, s.CanApplyDecision(super, Decision{Status: StatusVerified, Form: &FormData{}}))

	require.Error(t, s.CanUnlock(reviewA))
	require.NoError(t, s.CanUnlock(super))
	s.ApplyUnlock(t0)
	assert.Equal(t, StatusPending, s.Status)
	assert.False(t, s.IsLock)
	assert.Empty(t, s.LockedBy)
}

func TestResubmitRules(t *testing.T) {
	s := pending()
	assert.True(t, dErrors.HasCode(s.CanResubmit(customer), dErrors.CodeInvalidTransition))
	assert.NoError(t, s.CanResubmit(requestcontext.ActorInfo{Type: requestcontext.ActorAgent, ID: "agent-7"}))

	s.ApplyDecision(reviewA, Decision{Status: StatusRejected, Comment: "blurry photo"}, t0)
	assert.Equal(t, "blurry photo", s.RejectionComment)
	assert.True(t, s.CanCustomerEdit())
	require.NoError(t, s.CanResubmit(customer))

	s.ApplyResubmit(validForm(), nil, customer, t0)
	assert.Equal(t, StatusPending, s.Status)
	assert.False(t, s.CanCustomerEdit())
}

func TestDiffForms(t *testing.T) {
	before := validForm()
	after := validForm()
	after.Mobile = "9800000009"
	after.AnnualIncome = decimal.RequireFromString("650000.50")
	after.PermWard = 4

	changes := DiffForms(before, after)
	assert.Equal(t, []FieldChange{
		{Field: "mobile", OldValue: "9800000001", NewValue: "9800000009"},
		{Field: "perm_ward", OldValue: "", NewValue: "4"},
		{Field: "annual_income", OldValue: "500000", NewValue: "650000.5"},
	}, changes)
	assert.Empty(t, DiffForms(before, validForm()))
}

func TestFormValidate(t *testing.T) {
	f := validForm()
	require.NoError(t, f.Validate())

	missing := FormData{FirstName: "Ram"}
	assert.True(t, dErrors.HasCode(missing.Validate(), dErrors.CodeValidation))

	bad := validForm()
	bad.AnnualIncome = decimal.NewFromInt(-1)
	assert.Error(t, bad.Validate())

	bad = validForm()
	bad.Email = "not-an-email"
	assert.Error(t, bad.Validate())

	f.PAN = " abc123 "
	f.Email = " Ram@Example.COM "
	f.Normalize()
	assert.Equal(t, "ABC123", f.PAN)
	assert.Equal(t, "ram@example.com", f.Email)
}
