// Package models holds the customer's in-progress KYC form.
package models

import (
	"encoding/json"
	"time"

	id "kycreview/pkg/domain"
)

// Draft is a transient working copy of a customer's form. It is not
// validated and is deleted once the form is submitted.
type Draft struct {
	IdentityKey id.IdentityKey  `json:"identity_key"`
	Form        json.RawMessage `json:"form"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
