package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"kycreview/internal/identity/models"
	"kycreview/internal/platform/metrics"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/sentinel"
	dedupe "kycreview/pkg/platform/strings"
	"kycreview/pkg/platform/tx"
	"kycreview/pkg/requestcontext"
)

// Store persists identities and policy links.
type Store interface {
	FindByKey(ctx context.Context, key id.IdentityKey) (*models.Identity, error)
	FindByPolicy(ctx context.Context, policyNo id.PolicyNumber) (*models.Identity, error)
	FindLinkedKey(ctx context.Context, policyNos []id.PolicyNumber) (id.IdentityKey, error)
	GetOrCreate(ctx context.Context, ident *models.Identity) (*models.Identity, bool, error)
	SetCredentialIfEmpty(ctx context.Context, key id.IdentityKey, hash string, now time.Time) (bool, error)
	UpsertLinks(ctx context.Context, links []models.PolicyLink) error
	ListPolicies(ctx context.Context, key id.IdentityKey) ([]models.PolicyLink, error)
}

// Registry is the authoritative policy registry (the core system).
type Registry interface {
	LookupPolicy(ctx context.Context, policyNo id.PolicyNumber, dob time.Time) (*models.Owner, error)
	RelatedPolicies(ctx context.Context, owner *models.Owner) ([]id.PolicyNumber, error)
}

// Service resolves policies into deduplicated customer identities.
type Service struct {
	store      Store
	registry   Registry
	tx         tx.Runner
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	group      singleflight.Group
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxRunner sets the transactional boundary of resolution writes.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(store Store, registry Registry, opts ...Option) *Service {
	s := &Service{
		store:      store,
		registry:   registry,
		logger:     slog.Default(),
		tracer:     otel.Tracer("kycreview/identity"),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewShardedRunner()
	}
	return s
}

// ResolveRequest is a customer's claim to own a policy.
type ResolveRequest struct {
	PolicyNo id.PolicyNumber
	DOB      time.Time
	Contact  string
}

// Resolve maps a policy to its owner's identity, discovering and linking
// every policy of the same person. Concurrent resolves of the same claim
// share one execution.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (*models.Resolution, error) {
	req.Contact = strings.TrimSpace(req.Contact)
	flightKey := strings.Join([]string{string(req.PolicyNo), req.DOB.Format(models.DateLayout), req.Contact}, "|")

	start := time.Now()
	v, err, _ := s.group.Do(flightKey, func() (any, error) {
		return s.resolve(context.WithoutCancel(ctx), req)
	})
	s.metrics.ObserveResolveDuration(time.Since(start).Seconds())
	s.metrics.IncrementResolution(resolutionOutcome(err))
	if err != nil {
		return nil, err
	}
	return v.(*models.Resolution), nil
}

func (s *Service) resolve(ctx context.Context, req ResolveRequest) (*models.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "identity.resolve",
		trace.WithAttributes(attribute.String("policy_no", string(req.PolicyNo))))
	defer span.End()

	res, err := s.resolveLocal(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.Bool("local_link", true))
		return res, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, s.fail(ctx, span, err)
	}

	res, err = s.resolveRemote(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}
	span.SetAttributes(
		attribute.String("identity_key", string(res.Identity.Key)),
		attribute.Int("policies", len(res.Policies)),
	)
	s.logAudit(ctx, "identity_resolved",
		"identity_key", string(res.Identity.Key),
		"policy_no", string(req.PolicyNo),
		"policies", len(res.Policies),
		"created", res.Created,
	)
	return res, nil
}

// resolveLocal answers from an existing link. The presented DOB and
// contact are still checked against the stored identity.
func (s *Service) resolveLocal(ctx context.Context, req ResolveRequest) (*models.Resolution, error) {
	ident, err := s.store.FindByPolicy(ctx, req.PolicyNo)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up policy")
	}
	if !ident.MatchesPresented(req.DOB, req.Contact) {
		return nil, dErrors.New(dErrors.CodeIdentityMismatch, "presented details do not match policy owner")
	}
	policies, err := s.policyNumbers(ctx, ident.Key)
	if err != nil {
		return nil, err
	}
	return &models.Resolution{Identity: ident, Policies: policies}, nil
}

// resolveRemote consults the core system, then creates the identity and
// links the whole policy set in one transaction. Registry calls happen
// before the transaction opens so no connection is held across them.
func (s *Service) resolveRemote(ctx context.Context, req ResolveRequest) (*models.Resolution, error) {
	owner, err := s.registry.LookupPolicy(ctx, req.PolicyNo, req.DOB)
	if err != nil {
		return nil, registryError(err)
	}
	if !owner.Matches(req.DOB, req.Contact) {
		return nil, dErrors.New(dErrors.CodeIdentityMismatch, "presented details do not match policy owner")
	}

	related, err := s.registry.RelatedPolicies(ctx, owner)
	if err != nil {
		return nil, registryError(err)
	}
	policySet := policySet(related, req.PolicyNo)

	hash, err := bcrypt.GenerateFromPassword([]byte(models.DefaultPassword(owner.DOB)), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive default credential")
	}

	computed := owner.Key()
	var res *models.Resolution
	txCtx := tx.WithShardKey(ctx, string(computed))
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		key := computed
		existing, err := s.store.FindLinkedKey(txCtx, policySet)
		switch {
		case err == nil:
			key = existing
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check policy links")
		}

		ident, created, err := s.store.GetOrCreate(txCtx, &models.Identity{
			Key:       key,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			DOB:       owner.DOB,
			Contact:   owner.Mobile,
			KycStatus: models.KycStatusNotInitiated,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
		}
		if _, err := s.store.SetCredentialIfEmpty(txCtx, key, string(hash), now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set credential")
		}

		links := make([]models.PolicyLink, 0, len(policySet))
		for _, pn := range policySet {
			link := models.PolicyLink{PolicyNo: pn, IdentityKey: key, CreatedAt: now}
			if pn == owner.PolicyNo {
				link.BranchCode = owner.BranchCode
				link.BranchName = owner.BranchName
			}
			links = append(links, link)
		}
		if err := s.store.UpsertLinks(txCtx, links); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link policies")
		}

		res = &models.Resolution{Identity: ident, Policies: policySet, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if key := res.Identity.Key; key != computed {
		s.logger.InfoContext(ctx, "adopted existing identity for policy set",
			"request_id", requestcontext.RequestID(ctx),
			"identity_key", string(key),
			"computed_key", string(computed),
		)
	}
	return res, nil
}

// Authenticate checks a customer's password against the identity owning policyNo.
func (s *Service) Authenticate(ctx context.Context, policyNo id.PolicyNumber, password string) (*models.Identity, error) {
	ident, err := s.store.FindByPolicy(ctx, policyNo)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid policy number or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up policy")
	}
	if ident.CredentialHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(ident.CredentialHash), []byte(password)) != nil {
		s.logAudit(ctx, "login_failed", "identity_key", string(ident.Key))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid policy number or password")
	}
	s.logAudit(ctx, "login_succeeded", "identity_key", string(ident.Key))
	return ident, nil
}

// Get returns an identity by key.
func (s *Service) Get(ctx context.Context, key id.IdentityKey) (*models.Identity, error) {
	ident, err := s.store.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return ident, nil
}

// Policies lists the policy links of an identity.
func (s *Service) Policies(ctx context.Context, key id.IdentityKey) ([]models.PolicyLink, error) {
	links, err := s.store.ListPolicies(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return links, nil
}

func (s *Service) policyNumbers(ctx context.Context, key id.IdentityKey) ([]id.PolicyNumber, error) {
	links, err := s.Policies(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]id.PolicyNumber, len(links))
	for i, l := range links {
		out[i] = l.PolicyNo
	}
	return out, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.GetCode(err)))
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable) {
		s.logger.ErrorContext(ctx, "identity resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return err
}

// policySet returns related plus presented, deduplicated, presented last.
func policySet(related []id.PolicyNumber, presented id.PolicyNumber) []id.PolicyNumber {
	raw := make([]string, 0, len(related)+1)
	for _, pn := range related {
		if pn != presented {
			raw = append(raw, string(pn))
		}
	}
	raw = append(raw, string(presented))
	deduped := dedupe.DedupeUpper(raw)
	out := make([]id.PolicyNumber, len(deduped))
	for i, pn := range deduped {
		out[i] = id.PolicyNumber(pn)
	}
	return out
}

func registryError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodePolicyNotFound, "policy not found")
	}
	return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "policy registry unavailable")
}

func resolutionOutcome(err error) string {
	if err == nil {
		return "resolved"
	}
	return string(dErrors.GetCode(err))
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	args := append([]any{
		"log_type", "audit",
		"event", event,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	s.logger.InfoContext(ctx, event, args...)
}
