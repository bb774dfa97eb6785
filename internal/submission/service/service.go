package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	draftmodels "kycreview/internal/draft/models"
	idmodels "kycreview/internal/identity/models"
	"kycreview/internal/platform/config"
	"kycreview/internal/platform/metrics"
	"kycreview/internal/submission/models"
	"kycreview/internal/submission/store"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/sentinel"
	"kycreview/pkg/platform/tx"
	"kycreview/pkg/requestcontext"
)

// Store persists submissions.
type Store interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error)
	FindByIdentity(ctx context.Context, key id.IdentityKey) (*models.Submission, error)
	Execute(ctx context.Context, subID id.SubmissionID, validate store.ValidateFunc, mutate store.MutateFunc) (*models.Submission, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Submission, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

// IdentityStore reads identities and mirrors the submission status onto them.
type IdentityStore interface {
	FindByKey(ctx context.Context, key id.IdentityKey) (*idmodels.Identity, error)
	UpdateStatus(ctx context.Context, key id.IdentityKey, status idmodels.KycStatus, now time.Time) error
}

// Recorder writes the change log.
type Recorder interface {
	Record(ctx context.Context, entries ...audit.Entry)
	History(ctx context.Context, submissionID id.SubmissionID) ([]audit.Entry, error)
}

// DraftStore holds customer drafts.
type DraftStore interface {
	Get(ctx context.Context, key id.IdentityKey) (*draftmodels.Draft, error)
	Delete(ctx context.Context, key id.IdentityKey) error
}

// Service runs the review workflow: submission, soft locking, decisions
// and the privileged unlock. Every write goes through the store's
// versioned Execute inside a transaction sharded by identity key.
type Service struct {
	store      Store
	identities IdentityStore
	recorder   Recorder
	drafts     DraftStore
	tx         tx.Runner
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	lockWindow time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

func WithDrafts(d DraftStore) Option {
	return func(s *Service) { s.drafts = d }
}

// WithSoftLockWindow sets how long a reviewer's hold is honoured.
func WithSoftLockWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockWindow = d
		}
	}
}

func New(st Store, identities IdentityStore, recorder Recorder, opts ...Option) *Service {
	s := &Service{
		store:      st,
		identities: identities,
		recorder:   recorder,
		logger:     slog.Default(),
		tracer:     otel.Tracer("kycreview/submission"),
		lockWindow: config.DefaultSoftLockWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewShardedRunner()
	}
	return s
}

// LockToken describes the soft lock after a begin review call. Version is
// the record version the holder must present when saving.
type LockToken struct {
	SubmissionID id.SubmissionID
	Holder       string
	Since        time.Time
	ExpiresAt    time.Time
	Version      int64
	Outcome      models.LockOutcome
}

// SubmitRequest carries a form posted by the customer or an agent.
type SubmitRequest struct {
	IdentityKey id.IdentityKey
	Form        models.FormData
	Raw         json.RawMessage
	// Version, when non-zero, must equal the stored version.
	Version int64
}

var errCreateRace = errors.New("submission created concurrently")

// Submit creates the identity's submission or resubmits it. Either way
// the record lands in PENDING.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Submission, error) {
	actor := requestcontext.Actor(ctx)
	ctx, span := s.tracer.Start(ctx, "submission.submit",
		trace.WithAttributes(
			attribute.String("identity_key", string(req.IdentityKey)),
			attribute.String("actor_type", string(actor.Type)),
		))
	defer span.End()

	if actor.Type == requestcontext.ActorUser && actor.IdentityKey != string(req.IdentityKey) {
		return nil, s.fail(ctx, span, dErrors.New(dErrors.CodeForbidden, "customers may only submit their own form"))
	}
	if actor.Type != requestcontext.ActorUser && !actor.Type.IsStaff() {
		return nil, s.fail(ctx, span, dErrors.New(dErrors.CodeForbidden, "actor may not submit forms"))
	}
	req.Form.Normalize()
	if err := req.Form.Validate(); err != nil {
		return nil, s.fail(ctx, span, err)
	}
	if _, err := s.identities.FindByKey(ctx, req.IdentityKey); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.fail(ctx, span, dErrors.New(dErrors.CodeNotFound, "identity not found"))
		}
		return nil, s.fail(ctx, span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity"))
	}

	var (
		before, after *models.Submission
		err           error
	)
	for attempt := 0; attempt < 2; attempt++ {
		before, after, err = s.submitOnce(ctx, req, actor)
		if !errors.Is(err, errCreateRace) {
			break
		}
	}
	if errors.Is(err, errCreateRace) {
		err = dErrors.Wrap(err, dErrors.CodeStaleVersion, "submission was changed by someone else")
	}
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	s.recorder.Record(ctx, changeEntries(ctx, actor, audit.ActionSubmitted, before, after, "")...)
	s.discardDraft(ctx, req.IdentityKey)
	s.metrics.IncrementSubmission(string(actor.Type))
	span.SetAttributes(attribute.Int64("version", after.Version))
	s.logAudit(ctx, "kyc_submitted",
		"submission_id", after.ID.String(),
		"identity_key", string(after.IdentityKey),
		"actor_type", string(actor.Type),
		"actor_id", actor.ID,
		"version", after.Version,
		"created", before == nil,
	)
	return after, nil
}

// submitOnce returns a nil before when the submission was created.
func (s *Service) submitOnce(ctx context.Context, req SubmitRequest, actor requestcontext.ActorInfo) (*models.Submission, *models.Submission, error) {
	var before, after *models.Submission
	txCtx := tx.WithShardKey(ctx, string(req.IdentityKey))
	err := s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		current, err := s.store.FindByIdentity(txCtx, req.IdentityKey)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			sub := models.NewSubmission(req.IdentityKey, req.Form, req.Raw, actor, now)
			if err := s.store.Create(txCtx, sub); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return errCreateRace
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
			}
			after = sub
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
		default:
			after, err = s.store.Execute(txCtx, current.ID,
				func(cur *models.Submission) error {
					if cur.IsLock && !actor.Privileged {
						return dErrors.New(dErrors.CodeRecordLocked, "submission is verified and locked")
					}
					if actor.Type.IsStaff() && req.Version == 0 {
						return dErrors.New(dErrors.CodeValidation, "version is required to replace an existing submission")
					}
					if req.Version != 0 && cur.Version != req.Version {
						return s.staleVersion(cur.Version, req.Version)
					}
					if err := cur.CanResubmit(actor); err != nil {
						return err
					}
					if actor.Type.IsStaff() && !actor.Privileged {
						if _, err := cur.AcquireOutcome(actor, now, s.lockWindow); err != nil {
							return err
						}
					}
					before = cur.Clone()
					return nil
				},
				func(cur *models.Submission) bool {
					cur.ApplyResubmit(req.Form, req.Raw, actor, now)
					return true
				})
			if err != nil {
				return s.storeError(err, "failed to update submission")
			}
		}
		return s.syncIdentityStatus(txCtx, before, after, now)
	})
	return before, after, err
}

// BeginReview takes or refreshes the actor's soft lock on a submission.
// A hold older than the lock window is silently superseded.
func (s *Service) BeginReview(ctx context.Context, subID id.SubmissionID) (*LockToken, error) {
	actor := requestcontext.Actor(ctx)
	ctx, span := s.startReviewSpan(ctx, "submission.begin_review", subID, actor)
	defer span.End()

	if !actor.Type.IsStaff() {
		return nil, s.fail(ctx, span, dErrors.New(dErrors.CodeForbidden, "only reviewers may review submissions"))
	}
	now := requestcontext.Now(ctx)

	var outcome models.LockOutcome
	before, after, err := s.execute(ctx, subID,
		func(cur *models.Submission) error {
			if cur.IsLock && !actor.Privileged {
				return dErrors.New(dErrors.CodeRecordLocked, "submission is verified and locked")
			}
			var err error
			outcome, err = cur.AcquireOutcome(actor, now, s.lockWindow)
			return err
		},
		func(cur *models.Submission) bool {
			if !outcome.Writes() {
				return false
			}
			cur.ApplyAcquire(actor, now)
			return true
		})
	if outcome != "" {
		s.metrics.IncrementSoftLock(string(outcome))
		span.SetAttributes(attribute.String("lock_outcome", string(outcome)))
	}
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	if outcome.Writes() {
		entry := audit.NewEntry(ctx, subID, audit.ActionReviewStarted, actor)
		entry.Field = "currently_reviewed_by"
		entry.OldValue = before.ReviewedBy
		entry.NewValue = actor.ID
		s.recorder.Record(ctx, entry)
	}
	if outcome == models.LockStolen {
		s.logger.InfoContext(ctx, "soft lock superseded",
			"request_id", requestcontext.RequestID(ctx),
			"submission_id", subID.String(),
			"previous_holder", before.ReviewedBy,
			"holder", actor.ID,
		)
	}
	return &LockToken{
		SubmissionID: subID,
		Holder:       after.ReviewedBy,
		Since:        after.ReviewStartedAt,
		ExpiresAt:    after.LockExpiresAt(s.lockWindow),
		Version:      after.Version,
		Outcome:      outcome,
	}, nil
}

// ApplyReviewDecision saves a reviewer's decision. versionRead is the
// version the reviewer loaded; any other stored version fails with
// StaleVersion and leaves the record unchanged. The saving reviewer's
// soft lock, or an expired one, is released by the same write.
func (s *Service) ApplyReviewDecision(ctx context.Context, subID id.SubmissionID, d models.Decision, versionRead int64) (*models.Submission, error) {
	actor := requestcontext.Actor(ctx)
	ctx, span := s.startReviewSpan(ctx, "submission.apply_decision", subID, actor)
	defer span.End()
	span.SetAttributes(attribute.String("decision", string(d.Status)), attribute.Int64("version_read", versionRead))

	if !actor.Type.IsStaff() {
		return nil, s.fail(ctx, span, dErrors.New(dErrors.CodeForbidden, "only reviewers may review submissions"))
	}
	d.Comment = strings.TrimSpace(d.Comment)
	if d.Form != nil {
		form := *d.Form
		form.Normalize()
		if err := form.Validate(); err != nil {
			return nil, s.fail(ctx, span, err)
		}
		d.Form = &form
	}
	now := requestcontext.Now(ctx)

	before, after, err := s.execute(ctx, subID,
		func(cur *models.Submission) error {
			if cur.IsLock && !actor.Privileged {
				return dErrors.New(dErrors.CodeRecordLocked, "submission is verified and locked")
			}
			if cur.Version != versionRead {
				return s.staleVersion(cur.Version, versionRead)
			}
			if !actor.Privileged {
				if _, err := cur.AcquireOutcome(actor, now, s.lockWindow); err != nil {
					return err
				}
			}
			return cur.CanApplyDecision(actor, d)
		},
		func(cur *models.Submission) bool {
			cur.ApplyDecision(actor, d, now)
			if cur.HeldBy(actor.ID) || (cur.ReviewedBy != "" && now.Sub(cur.ReviewStartedAt) > s.lockWindow) {
				cur.ApplyRelease(now)
			}
			return true
		})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	s.recorder.Record(ctx, changeEntries(ctx, actor, audit.ActionStatusChanged, before, after, d.Comment)...)
	s.metrics.IncrementDecision(string(d.Status))
	s.logAudit(ctx, "kyc_reviewed",
		"submission_id", subID.String(),
		"actor_id", actor.ID,
		"from_status", string(before.Status),
		"to_status", string(after.Status),
		"is_lock", after.IsLock,
		"version", after.Version,
	)
	return after, nil
}

// EndReview releases the actor's soft lock. Releasing a lock the actor
// does not hold is a no-op.
func (s *Service) EndReview(ctx context.Context, subID id.SubmissionID) error {
	actor := requestcontext.Actor(ctx)
	ctx, span := s.startReviewSpan(ctx, "submission.end_review", subID, actor)
	defer span.End()

	now := requestcontext.Now(ctx)
	released := false
	_, _, err := s.execute(ctx, subID,
		func(*models.Submission) error { return nil },
		func(cur *models.Submission) bool {
			if !cur.HeldBy(actor.ID) {
				return false
			}
			cur.ApplyRelease(now)
			released = true
			return true
		})
	if err != nil {
		return s.fail(ctx, span, err)
	}
	if released {
		entry := audit.NewEntry(ctx, subID, audit.ActionReviewEnded, actor)
		entry.Field = "currently_reviewed_by"
		entry.OldValue = actor.ID
		s.recorder.Record(ctx, entry)
	}
	span.SetAttributes(attribute.Bool("released", released))
	return nil
}

// Unlock lifts the freeze of a verified submission and returns it to
// PENDING. Only privileged actors may unlock.
func (s *Service) Unlock(ctx context.Context, subID id.SubmissionID, reason string) (*models.Submission, error) {
	actor := requestcontext.Actor(ctx)
	ctx, span := s.startReviewSpan(ctx, "submission.unlock", subID, actor)
	defer span.End()

	reason = strings.TrimSpace(reason)
	now := requestcontext.Now(ctx)
	before, after, err := s.execute(ctx, subID,
		func(cur *models.Submission) error { return cur.CanUnlock(actor) },
		func(cur *models.Submission) bool {
			cur.ApplyUnlock(now)
			if cur.HeldBy(actor.ID) {
				cur.ApplyRelease(now)
			}
			return true
		})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	s.recorder.Record(ctx, changeEntries(ctx, actor, audit.ActionUnlocked, before, after, reason)...)
	s.logAudit(ctx, "kyc_unlocked",
		"submission_id", subID.String(),
		"actor_id", actor.ID,
		"reason", reason,
	)
	return after, nil
}

// Get returns a submission by ID.
func (s *Service) Get(ctx context.Context, subID id.SubmissionID) (*models.Submission, error) {
	sub, err := s.store.FindByID(ctx, subID)
	if err != nil {
		return nil, s.storeError(err, "failed to load submission")
	}
	return sub, nil
}

// GetByIdentity returns the submission of an identity.
func (s *Service) GetByIdentity(ctx context.Context, key id.IdentityKey) (*models.Submission, error) {
	sub, err := s.store.FindByIdentity(ctx, key)
	if err != nil {
		return nil, s.storeError(err, "failed to load submission")
	}
	return sub, nil
}

// List returns the review queue.
func (s *Service) List(ctx context.Context, filter store.ListFilter) ([]*models.Submission, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status filter")
	}
	subs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list submissions")
	}
	return subs, nil
}

// History returns the change log of a submission, newest first.
func (s *Service) History(ctx context.Context, subID id.SubmissionID) ([]audit.Entry, error) {
	if _, err := s.Get(ctx, subID); err != nil {
		return nil, err
	}
	entries, err := s.recorder.History(ctx, subID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load change log")
	}
	return entries, nil
}

// Stats summarizes the review queue for the dashboard.
type Stats struct {
	Total      int
	Pending    int
	Verified   int
	Rejected   int
	Incomplete int
	Recent     []*models.Submission
}

const recentLimit = 10

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		counts map[models.Status]int
		recent []*models.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.store.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.List(gctx, store.ListFilter{Limit: recentLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard stats")
	}

	st := &Stats{
		Pending:    counts[models.StatusPending],
		Verified:   counts[models.StatusVerified],
		Rejected:   counts[models.StatusRejected],
		Incomplete: counts[models.StatusIncomplete],
		Recent:     recent,
	}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

// Prefill is the form a customer sees when opening the KYC page.
type Prefill struct {
	Form             models.FormData
	Status           models.Status
	Source           string
	CanEdit          bool
	Version          int64
	RejectionComment string
}

// Prefill merges, in increasing priority, the identity's registry
// details, the stored submission and the customer's draft.
func (s *Service) Prefill(ctx context.Context, key id.IdentityKey) (*Prefill, error) {
	var (
		ident *idmodels.Identity
		sub   *models.Submission
		draft *draftmodels.Draft
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ident, err = s.identities.FindByKey(gctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "identity not found")
		}
		return err
	})
	g.Go(func() error {
		var err error
		sub, err = s.store.FindByIdentity(gctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return err
	})
	if s.drafts != nil {
		g.Go(func() error {
			var err error
			draft, err = s.drafts.Get(gctx, key)
			if err != nil {
				if !errors.Is(err, sentinel.ErrNotFound) {
					s.logger.WarnContext(gctx, "draft unavailable for prefill",
						"request_id", requestcontext.RequestID(gctx),
						"identity_key", string(key),
						"error", err,
					)
				}
				draft = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load form")
	}

	p := &Prefill{
		Form: models.FormData{
			FirstName: ident.FirstName,
			LastName:  ident.LastName,
			DOB:       ident.DOB.Format(idmodels.DateLayout),
			Mobile:    ident.Contact,
		},
		Status:  ident.KycStatus,
		Source:  "identity",
		CanEdit: true,
	}
	if sub != nil {
		p.Form = sub.Form
		p.Status = sub.Status
		p.Source = "submission"
		p.CanEdit = sub.CanCustomerEdit()
		p.Version = sub.Version
		p.RejectionComment = sub.RejectionComment
	}
	if draft != nil && p.CanEdit {
		merged := p.Form
		if err := json.Unmarshal(draft.Form, &merged); err != nil {
			s.logger.WarnContext(ctx, "ignoring unreadable draft",
				"request_id", requestcontext.RequestID(ctx),
				"identity_key", string(key),
				"error", err,
			)
		} else {
			p.Form = merged
			p.Source = "draft"
		}
	}
	return p, nil
}

// execute loads the submission for its shard key and runs a versioned
// write in a transaction. before is the record as validated.
func (s *Service) execute(ctx context.Context, subID id.SubmissionID, validate store.ValidateFunc, mutate store.MutateFunc) (*models.Submission, *models.Submission, error) {
	current, err := s.store.FindByID(ctx, subID)
	if err != nil {
		return nil, nil, s.storeError(err, "failed to load submission")
	}

	var before, after *models.Submission
	txCtx := tx.WithShardKey(ctx, string(current.IdentityKey))
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		var err error
		after, err = s.store.Execute(txCtx, subID,
			func(cur *models.Submission) error {
				if err := validate(cur); err != nil {
					return err
				}
				before = cur.Clone()
				return nil
			}, mutate)
		if err != nil {
			return s.storeError(err, "failed to update submission")
		}
		if after.Version == before.Version {
			return nil
		}
		return s.syncIdentityStatus(txCtx, before, after, requestcontext.Now(txCtx))
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *Service) syncIdentityStatus(ctx context.Context, before, after *models.Submission, now time.Time) error {
	if before != nil && before.Status == after.Status {
		return nil
	}
	if err := s.identities.UpdateStatus(ctx, after.IdentityKey, after.Status, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity status")
	}
	return nil
}

func (s *Service) discardDraft(ctx context.Context, key id.IdentityKey) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to discard draft after submit",
			"request_id", requestcontext.RequestID(ctx),
			"identity_key", string(key),
			"error", err,
		)
	}
}

func (s *Service) staleVersion(stored, presented int64) error {
	s.metrics.IncrementStaleVersion()
	return dErrors.New(dErrors.CodeStaleVersion,
		fmt.Sprintf("submission is at version %d, not %d", stored, presented))
}

// storeError passes domain errors through and translates store sentinels.
func (s *Service) storeError(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "submission not found")
	case errors.Is(err, sentinel.ErrConflict):
		s.metrics.IncrementStaleVersion()
		return dErrors.Wrap(err, dErrors.CodeStaleVersion, "submission was changed by someone else")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) startReviewSpan(ctx context.Context, name string, subID id.SubmissionID, actor requestcontext.ActorInfo) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("submission_id", subID.String()),
		attribute.String("actor_id", actor.ID),
		attribute.Bool("privileged", actor.Privileged),
	))
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.GetCode(err)))
	if dErrors.GetCode(err) == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "submission operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return err
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	args := append([]any{
		"log_type", "audit",
		"event", event,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	s.logger.InfoContext(ctx, event, args...)
}
