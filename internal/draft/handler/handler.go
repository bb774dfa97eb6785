package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kycreview/internal/draft/models"
	"kycreview/internal/draft/service"
	id "kycreview/pkg/domain"
	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/platform/httputil"
	"kycreview/pkg/requestcontext"
)

// Service is the draft surface used by the handlers.
type Service interface {
	Save(ctx context.Context, key id.IdentityKey, form json.RawMessage) (*models.Draft, error)
	Get(ctx context.Context, key id.IdentityKey) (*models.Draft, error)
	Delete(ctx context.Context, key id.IdentityKey) error
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the draft routes. The caller requires a USER actor.
func (h *Handler) Register(r chi.Router) {
	r.Put("/kyc/draft", h.HandleSave)
	r.Get("/kyc/draft", h.HandleGet)
	r.Delete("/kyc/draft", h.HandleDelete)
}

type draftResponse struct {
	Form      json.RawMessage `json:"form"`
	UpdatedAt string          `json:"updated_at"`
}

func toResponse(d *models.Draft) draftResponse {
	return draftResponse{Form: d.Form, UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339)}
}

func customerKey(r *http.Request) (id.IdentityKey, error) {
	return id.ParseIdentityKey(requestcontext.Actor(r.Context()).IdentityKey)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	key, err := customerKey(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "a customer session is required"))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, service.MaxDraftBytes+1))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read body"))
		return
	}
	d, err := h.svc.Save(r.Context(), key, body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key, err := customerKey(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "a customer session is required"))
		return
	}
	d, err := h.svc.Get(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key, err := customerKey(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "a customer session is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), key); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to delete draft",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
