package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"kycreview/internal/identity/models"
	"kycreview/internal/identity/service"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/httputil"
	"kycreview/pkg/requestcontext"
)

// Service is the identity surface used by the handlers.
type Service interface {
	Resolve(ctx context.Context, req service.ResolveRequest) (*models.Resolution, error)
	Authenticate(ctx context.Context, policyNo id.PolicyNumber, password string) (*models.Identity, error)
}

// TokenIssuer signs actor tokens.
type TokenIssuer interface {
	IssueToken(actor requestcontext.ActorInfo, now time.Time, expiresIn time.Duration) (string, error)
}

// Handler serves identity resolution, customer login and staff token issuance.
type Handler struct {
	svc      Service
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

func New(svc Service, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, tokenTTL: tokenTTL, logger: logger}
}

// Register mounts the public routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/resolve", h.HandleResolve)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAdmin mounts staff token issuance. The caller guards the router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/tokens", h.HandleIssueStaffToken)
}

type resolveRequest struct {
	PolicyNo string `json:"policy_no"`
	DOB      string `json:"dob"`
	Contact  string `json:"contact,omitempty"`
}

type resolveResponse struct {
	IdentityKey string   `json:"identity_key"`
	FullName    string   `json:"full_name"`
	KycStatus   string   `json:"kyc_status"`
	Policies    []string `json:"policies"`
	Created     bool     `json:"created"`
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req resolveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	policyNo, err := id.ParsePolicyNumber(req.PolicyNo)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	dob, err := models.ParseDOB(req.DOB)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.svc.Resolve(ctx, service.ResolveRequest{PolicyNo: policyNo, DOB: dob, Contact: req.Contact})
	if err != nil {
		h.logger.WarnContext(ctx, "identity resolution rejected",
			"request_id", requestID,
			"policy_no", string(policyNo),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	policies := make([]string, len(res.Policies))
	for i, p := range res.Policies {
		policies[i] = string(p)
	}
	httputil.WriteJSON(w, status, resolveResponse{
		IdentityKey: string(res.Identity.Key),
		FullName:    res.Identity.FullName(),
		KycStatus:   string(res.Identity.KycStatus),
		Policies:    policies,
		Created:     res.Created,
	})
}

type loginRequest struct {
	PolicyNo string `json:"policy_no"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Subject     string `json:"subject"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	policyNo, err := id.ParsePolicyNumber(req.PolicyNo)
	if err != nil || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "policy_no and password are required"))
		return
	}

	ident, err := h.svc.Authenticate(ctx, policyNo, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.issue(w, r, requestcontext.ActorInfo{
		Type:        requestcontext.ActorUser,
		ID:          string(ident.Key),
		IdentityKey: string(ident.Key),
	})
}

type staffTokenRequest struct {
	ActorType  string `json:"actor_type"`
	ActorID    string `json:"actor_id"`
	Privileged bool   `json:"privileged,omitempty"`
}

func (h *Handler) HandleIssueStaffToken(w http.ResponseWriter, r *http.Request) {
	var req staffTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	actorType := requestcontext.ActorType(strings.ToUpper(strings.TrimSpace(req.ActorType)))
	actorID := strings.TrimSpace(req.ActorID)
	if !actorType.IsStaff() || actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "actor_type must be ADMIN or AGENT and actor_id is required"))
		return
	}
	h.logger.InfoContext(r.Context(), "staff_token_issued",
		"log_type", "audit",
		"request_id", requestcontext.RequestID(r.Context()),
		"actor_type", string(actorType),
		"actor_id", actorID,
		"privileged", req.Privileged,
	)
	h.issue(w, r, requestcontext.ActorInfo{Type: actorType, ID: actorID, Privileged: req.Privileged})
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, actor requestcontext.ActorInfo) {
	token, err := h.tokens.IssueToken(actor, requestcontext.Now(r.Context()), h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue token",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokenTTL.Seconds()),
		Subject:     actor.ID,
	})
}
