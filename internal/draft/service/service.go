// Package service manages customer drafts. Drafts are opaque JSON objects;
// validation happens when the form is submitted.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"kycreview/internal/draft/models"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/sentinel"
	"kycreview/pkg/requestcontext"
)

// MaxDraftBytes bounds a stored draft.
const MaxDraftBytes = 256 << 10

// Store persists drafts with expiry.
type Store interface {
	Save(ctx context.Context, d *models.Draft, ttl time.Duration) error
	Get(ctx context.Context, key id.IdentityKey) (*models.Draft, error)
	Delete(ctx context.Context, key id.IdentityKey) error
}

type Service struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, ttl: 7 * 24 * time.Hour, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save replaces the draft of key with form, which must be a JSON object.
func (s *Service) Save(ctx context.Context, key id.IdentityKey, form json.RawMessage) (*models.Draft, error) {
	form = bytes.TrimSpace(form)
	if len(form) > MaxDraftBytes {
		return nil, dErrors.New(dErrors.CodeValidation, "draft is too large")
	}
	if len(form) == 0 || form[0] != '{' || !json.Valid(form) {
		return nil, dErrors.New(dErrors.CodeValidation, "draft must be a JSON object")
	}
	d := &models.Draft{IdentityKey: key, Form: form, UpdatedAt: requestcontext.Now(ctx)}
	if err := s.store.Save(ctx, d, s.ttl); err != nil {
		s.logger.ErrorContext(ctx, "failed to save draft",
			"request_id", requestcontext.RequestID(ctx),
			"identity_key", string(key),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save draft")
	}
	return d, nil
}

// Get returns the live draft of key.
func (s *Service) Get(ctx context.Context, key id.IdentityKey) (*models.Draft, error) {
	d, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "no draft saved")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load draft")
	}
	return d, nil
}

// Delete discards the draft of key. Deleting a missing draft succeeds.
func (s *Service) Delete(ctx context.Context, key id.IdentityKey) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete draft")
	}
	return nil
}
