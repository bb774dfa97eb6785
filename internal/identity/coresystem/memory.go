package coresystem

import (
	"context"
	"slices"
	"sync"
	"time"

	"kycreview/internal/identity/models"
	id "kycreview/pkg/domain"
)

// MemoryRegistry is an in-process stand-in for the core system, used in
// dev mode and tests. Lookups behave like the HTTP registry: a DOB
// mismatch is indistinguishable from an unknown policy.
type MemoryRegistry struct {
	mu     sync.RWMutex
	owners map[id.PolicyNumber]models.Owner
	fail   error
}

func NewMemoryRegistry(owners ...models.Owner) *MemoryRegistry {
	r := &MemoryRegistry{owners: make(map[id.PolicyNumber]models.Owner)}
	for _, o := range owners {
		r.Add(o)
	}
	return r
}

func (r *MemoryRegistry) Add(o models.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[o.PolicyNo] = o
}

// SetUnavailable makes every call fail as a transport outage until cleared with nil.
func (r *MemoryRegistry) SetUnavailable(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *MemoryRegistry) LookupPolicy(_ context.Context, policyNo id.PolicyNumber, dob time.Time) (*models.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fail != nil {
		return nil, newError(CategoryOutage, endpointPolicy, "registry unavailable", r.fail)
	}
	o, ok := r.owners[policyNo]
	if !ok || !models.SameDate(o.DOB, dob) {
		return nil, newError(CategoryNotFound, endpointPolicy, "policy not found", nil)
	}
	return &o, nil
}

func (r *MemoryRegistry) RelatedPolicies(_ context.Context, owner *models.Owner) ([]id.PolicyNumber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fail != nil {
		return nil, newError(CategoryOutage, endpointRelated, "registry unavailable", r.fail)
	}
	key := owner.Key()
	var out []id.PolicyNumber
	for pn, o := range r.owners {
		if o.Key() == key {
			out = append(out, pn)
		}
	}
	slices.Sort(out)
	return out, nil
}

// DevOwners seeds the dev-mode registry: POL001 and POL002 belong to the
// same person, POL003 to someone else.
func DevOwners() []models.Owner {
	ram := time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)
	sita := time.Date(1985, 7, 2, 0, 0, 0, 0, time.UTC)
	return []models.Owner{
		{PolicyNo: "POL001", FirstName: "Ram", LastName: "Sharma", DOB: ram, Mobile: "9800000001", BranchCode: "KTM", BranchName: "Kathmandu"},
		{PolicyNo: "POL002", FirstName: "Ram", LastName: "Sharma", DOB: ram, Mobile: "9800000001", BranchCode: "PKR", BranchName: "Pokhara"},
		{PolicyNo: "POL003", FirstName: "Sita", LastName: "Thapa", DOB: sita, Mobile: "9800000002", BranchCode: "KTM", BranchName: "Kathmandu"},
	}
}
