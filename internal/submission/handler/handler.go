package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	idmodels "kycreview/internal/identity/models"
	"kycreview/internal/submission/models"
	"kycreview/internal/submission/service"
	"kycreview/internal/submission/store"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/httputil"
	"kycreview/pkg/requestcontext"
)

// Service is the review workflow used by the handlers.
type Service interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*models.Submission, error)
	BeginReview(ctx context.Context, subID id.SubmissionID) (*service.LockToken, error)
	ApplyReviewDecision(ctx context.Context, subID id.SubmissionID, d models.Decision, versionRead int64) (*models.Submission, error)
	EndReview(ctx context.Context, subID id.SubmissionID) error
	Unlock(ctx context.Context, subID id.SubmissionID, reason string) (*models.Submission, error)
	Get(ctx context.Context, subID id.SubmissionID) (*models.Submission, error)
	GetByIdentity(ctx context.Context, key id.IdentityKey) (*models.Submission, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Submission, error)
	Stats(ctx context.Context) (*service.Stats, error)
	Prefill(ctx context.Context, key id.IdentityKey) (*service.Prefill, error)
	History(ctx context.Context, subID id.SubmissionID) ([]audit.Entry, error)
}

// Handler serves the customer KYC form and the reviewer console API.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the customer and agent routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/kyc/form", h.HandlePrefill)
	r.Get("/kyc/submission", h.HandleOwnSubmission)
	r.Post("/kyc/submit", h.HandleSubmit)
}

// RegisterAdmin mounts the reviewer routes. The caller restricts them to staff.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/kyc", h.HandleList)
	r.Get("/admin/kyc/stats", h.HandleStats)
	r.Get("/admin/kyc/{id}", h.HandleGet)
	r.Post("/admin/kyc/{id}/review", h.HandleBeginReview)
	r.Delete("/admin/kyc/{id}/review", h.HandleEndReview)
	r.Post("/admin/kyc/{id}/decision", h.HandleDecision)
	r.Post("/admin/kyc/{id}/unlock", h.HandleUnlock)
	r.Get("/admin/kyc/{id}/history", h.HandleHistory)
}

func submissionID(r *http.Request) (id.SubmissionID, error) {
	return id.ParseSubmissionID(chi.URLParam(r, "id"))
}

func (h *Handler) HandlePrefill(w http.ResponseWriter, r *http.Request) {
	key, err := id.ParseIdentityKey(requestcontext.Actor(r.Context()).IdentityKey)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "a customer session is required"))
		return
	}
	p, err := h.svc.Prefill(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prefillResponse{
		Form:             p.Form,
		Status:           string(p.Status),
		Source:           p.Source,
		CanEdit:          p.CanEdit,
		Version:          p.Version,
		RejectionComment: p.RejectionComment,
	})
}

func (h *Handler) HandleOwnSubmission(w http.ResponseWriter, r *http.Request) {
	key, err := id.ParseIdentityKey(requestcontext.Actor(r.Context()).IdentityKey)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "a customer session is required"))
		return
	}
	sub, err := h.svc.GetByIdentity(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

type submitRequest struct {
	IdentityKey string          `json:"identity_key,omitempty"`
	Version     int64           `json:"version,omitempty"`
	Form        json.RawMessage `json:"form"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	var req submitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	form, err := decodeForm(req.Form)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rawKey := actor.IdentityKey
	if actor.Type.IsStaff() {
		rawKey = req.IdentityKey
	}
	key, err := id.ParseIdentityKey(rawKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.svc.Submit(ctx, service.SubmitRequest{
		IdentityKey: key,
		Form:        form,
		Raw:         req.Form,
		Version:     req.Version,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submission rejected",
			"request_id", requestcontext.RequestID(ctx),
			"identity_key", string(key),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if sub.Version == 1 {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, toSubmissionResponse(sub))
}

// decodeForm strictly decodes the posted form; the raw bytes are kept as the backup.
func decodeForm(raw json.RawMessage) (models.FormData, error) {
	var form models.FormData
	if len(bytes.TrimSpace(raw)) == 0 {
		return form, dErrors.New(dErrors.CodeValidation, "form is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		return form, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid form")
	}
	return form, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ListFilter{Status: models.Status(strings.ToUpper(q.Get("status")))}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, name+" must be an integer"))
				return
			}
			*dst = n
		}
	}
	subs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]submissionResponse, len(subs))
	for i, sub := range subs {
		out[i] = toSubmissionResponse(sub)
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Submissions: out})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	recent := make([]submissionResponse, len(st.Recent))
	for i, sub := range st.Recent {
		recent[i] = toSubmissionResponse(sub)
	}
	httputil.WriteJSON(w, http.StatusOK, statsResponse{
		Total:      st.Total,
		Pending:    st.Pending,
		Verified:   st.Verified,
		Rejected:   st.Rejected,
		Incomplete: st.Incomplete,
		Recent:     recent,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	subID, err := submissionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := h.svc.Get(r.Context(), subID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) HandleBeginReview(w http.ResponseWriter, r *http.Request) {
	subID, err := submissionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	token, err := h.svc.BeginReview(r.Context(), subID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lockTokenResponse{
		SubmissionID: token.SubmissionID.String(),
		Holder:       token.Holder,
		Since:        formatTime(token.Since),
		ExpiresAt:    formatTime(token.ExpiresAt),
		Version:      token.Version,
		Outcome:      string(token.Outcome),
	})
}

func (h *Handler) HandleEndReview(w http.ResponseWriter, r *http.Request) {
	subID, err := submissionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.EndReview(r.Context(), subID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type decisionRequest struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment,omitempty"`
	Lock    bool            `json:"is_lock,omitempty"`
	Version int64           `json:"version"`
	Form    json.RawMessage `json:"form,omitempty"`
}

func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subID, err := submissionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := idmodels.ParseKycStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Version <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "version is required"))
		return
	}
	d := models.Decision{Status: status, Comment: req.Comment, Lock: req.Lock}
	if len(req.Form) > 0 {
		form, err := decodeForm(req.Form)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		d.Form = &form
	}

	sub, err := h.svc.ApplyReviewDecision(ctx, subID, d, req.Version)
	if err != nil {
		h.logger.InfoContext(ctx, "review decision rejected",
			"request_id", requestcontext.RequestID(ctx),
			"submission_id", subID.String(),
			"code", string(dErrors.GetCode(err)),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

type unlockRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	subID, err := submissionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req unlockRequest
	if r.ContentLength != 0 {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read body"))
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
				return
			}
		}
	}
	sub, err := h.svc.Unlock(r.Context(), subID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	subID, err := submissionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.svc.History(r.Context(), subID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{
			Action:    string(e.Action),
			Field:     e.Field,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			Comment:   e.Comment,
			ActorType: string(e.ActorType),
			ActorID:   e.ActorID,
			Timestamp: formatTime(e.Timestamp),
		}
	}
	httputil.WriteJSON(w, http.StatusOK, historyResponse{Entries: out})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
