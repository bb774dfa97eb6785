// Package domain holds typed identifiers shared across bounded contexts.
//
// IDs are parsed once at the trust boundary (handlers) and passed around as
// distinct types so a submission ID can never be used where a change log
// entry ID is expected.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "kycreview/pkg/domain-errors"
)

// SubmissionID identifies a KYC submission.
type SubmissionID uuid.UUID

// EntryID identifies a change log entry.
type EntryID uuid.UUID

// IdentityKey is the deterministic customer identity key ("CUS" + 12 hex).
type IdentityKey string

// PolicyNumber is an external policy number, normalized to upper case.
type PolicyNumber string

func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id SubmissionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) String() string      { return uuid.UUID(id).String() }

func (k IdentityKey) String() string  { return string(k) }
func (p PolicyNumber) String() string { return string(p) }

// NewSubmissionID returns a random submission ID.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// NewEntryID returns a random change log entry ID.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return parsed, nil
}

// ParseSubmissionID validates and returns a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	parsed, err := parseUUID(s, "submission ID")
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(parsed), nil
}

// ParseEntryID validates and returns an EntryID.
func ParseEntryID(s string) (EntryID, error) {
	parsed, err := parseUUID(s, "entry ID")
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(parsed), nil
}

var identityKeyPattern = regexp.MustCompile(`^CUS[0-9a-f]{12}$`)

// ParseIdentityKey validates the shape of an identity key.
func ParseIdentityKey(s string) (IdentityKey, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity key is required")
	}
	if !identityKeyPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid identity key")
	}
	return IdentityKey(s), nil
}

// maxPolicyNumberLen bounds policy numbers accepted from clients.
const maxPolicyNumberLen = 50

// ParsePolicyNumber trims and upper-cases a policy number.
// Matching is case-insensitive, so the normalized form is the storage key.
func ParsePolicyNumber(s string) (PolicyNumber, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "policy number is required")
	}
	if len(trimmed) > maxPolicyNumberLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "policy number too long")
	}
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f {
			return "", dErrors.New(dErrors.CodeInvalidInput, "policy number contains control characters")
		}
	}
	return PolicyNumber(trimmed), nil
}
