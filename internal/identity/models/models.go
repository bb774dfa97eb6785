package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
)

// DateLayout is the ISO date format used for dates of birth everywhere.
const DateLayout = "2006-01-02"

// KycStatus is the review status of a customer, denormalized from the
// submission onto the identity.
type KycStatus string

const (
	KycStatusNotInitiated KycStatus = "NOT_INITIATED"
	KycStatusPending      KycStatus = "PENDING"
	KycStatusIncomplete   KycStatus = "INCOMPLETE"
	KycStatusVerified     KycStatus = "VERIFIED"
	KycStatusRejected     KycStatus = "REJECTED"
)

func (s KycStatus) IsValid() bool {
	switch s {
	case KycStatusNotInitiated, KycStatusPending, KycStatusIncomplete, KycStatusVerified, KycStatusRejected:
		return true
	}
	return false
}

func (s KycStatus) String() string { return string(s) }

// ParseKycStatus accepts a status name in any case.
func ParseKycStatus(s string) (KycStatus, error) {
	status := KycStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown kyc status: "+s)
	}
	return status, nil
}

// Identity is one physical customer, deduplicated across policies.
//
// Invariants:
//   - Key is derived from (first name, last name, DOB, contact) and never changes
//   - There is at most one Identity per Key
//   - CredentialHash is set once, on first resolution, and only replaced by a password change
type Identity struct {
	Key            id.IdentityKey
	FirstName      string
	LastName       string
	DOB            time.Time
	Contact        string
	KycStatus      KycStatus
	CredentialHash string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (i *Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// MatchesPresented reports whether a presented DOB and contact agree with
// the stored record. Contact is only compared when both sides have one.
func (i *Identity) MatchesPresented(dob time.Time, contact string) bool {
	if !SameDate(i.DOB, dob) {
		return false
	}
	contact = strings.TrimSpace(contact)
	stored := strings.TrimSpace(i.Contact)
	if contact != "" && stored != "" && contact != stored {
		return false
	}
	return true
}

// PolicyLink maps a policy number to its owning identity.
type PolicyLink struct {
	PolicyNo    id.PolicyNumber
	IdentityKey id.IdentityKey
	BranchCode  string
	BranchName  string
	CreatedAt   time.Time
}

// Owner is the authoritative owner record of a policy, as held by the core system.
type Owner struct {
	PolicyNo   id.PolicyNumber
	FirstName  string
	LastName   string
	DOB        time.Time
	Mobile     string
	BranchCode string
	BranchName string
}

// Matches validates a presented DOB and, when supplied, contact against
// the authoritative owner.
func (o *Owner) Matches(dob time.Time, contact string) bool {
	if !SameDate(o.DOB, dob) {
		return false
	}
	contact = strings.TrimSpace(contact)
	return contact == "" || contact == strings.TrimSpace(o.Mobile)
}

// Key derives the identity key of this owner.
func (o *Owner) Key() id.IdentityKey {
	return DeriveKey(o.FirstName, o.LastName, o.DOB, o.Mobile)
}

// Resolution is the outcome of resolving a policy to an identity.
type Resolution struct {
	Identity *Identity
	Policies []id.PolicyNumber
	Created  bool
}

const keyHexLen = 12

// DeriveKey computes "CUS" + the first 12 hex characters of
// sha256(lower(first)|lower(last)|dob|contact). Names are trimmed and
// lowercased, contact is trimmed.
func DeriveKey(firstName, lastName string, dob time.Time, contact string) id.IdentityKey {
	raw := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(firstName)),
		strings.ToLower(strings.TrimSpace(lastName)),
		dob.Format(DateLayout),
		strings.TrimSpace(contact),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return id.IdentityKey("CUS" + hex.EncodeToString(sum[:])[:keyHexLen])
}

// ParseDOB parses an ISO date of birth.
func ParseDOB(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "dob is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "dob must be YYYY-MM-DD")
	}
	return t, nil
}

// DefaultPassword is the initial credential of a new identity: DOB as YYYYMMDD.
func DefaultPassword(dob time.Time) string {
	return dob.Format("20060102")
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
