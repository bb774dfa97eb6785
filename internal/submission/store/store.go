// Package store persists KYC submissions. Stores hold data only; review
// rules live in the models and the service.
package store

import (
	"kycreview/internal/submission/models"
)

// ListFilter selects submissions for the review queue.
type ListFilter struct {
	Status models.Status
	Limit  int
	Offset int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalized clamps the page size.
func (f ListFilter) Normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ValidateFunc inspects the current record; an error aborts without writing.
type ValidateFunc func(*models.Submission) error

// MutateFunc changes the record in place and reports whether anything
// changed. Unchanged records are not written and keep their version.
type MutateFunc func(*models.Submission) bool
