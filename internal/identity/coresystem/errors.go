package coresystem

import (
	"errors"
	"fmt"

	"kycreview/pkg/platform/sentinel"
)

// Category is the normalized failure taxonomy of registry calls.
type Category string

const (
	CategoryNotFound Category = "not_found"
	CategoryTimeout  Category = "timeout"
	CategoryOutage   Category = "outage"
	CategoryBadData  Category = "bad_data"
	CategoryAuth     Category = "authentication"
)

// Error wraps a registry failure. Not-found failures unwrap to
// sentinel.ErrNotFound, everything else to sentinel.ErrUnavailable.
type Error struct {
	Category   Category
	Endpoint   string
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("core system %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("core system %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *Error) Unwrap() []error {
	base := sentinel.ErrUnavailable
	if e.Category == CategoryNotFound {
		base = sentinel.ErrNotFound
	}
	if e.Underlying == nil {
		return []error{base}
	}
	return []error{base, e.Underlying}
}

func newError(category Category, endpoint, message string, underlying error) *Error {
	return &Error{Category: category, Endpoint: endpoint, Message: message, Underlying: underlying}
}

// GetCategory extracts the category of a registry error.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryOutage
}
