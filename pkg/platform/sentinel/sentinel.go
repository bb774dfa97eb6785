package sentinel

import "errors"

// Sentinel errors for storage and infrastructure facts. Stores return these
// (wrapped with context) and services translate them into domain errors:
//   - ErrNotFound: row or key does not exist
//   - ErrConflict: a conditional write lost the race (version moved, key taken)
//   - ErrInvalidState: the stored entity cannot take the requested change
//   - ErrUnavailable: the backing system is unreachable or failing
//
// Business rule failures (locked record, missing comment) are domain errors
// and never use these values.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
