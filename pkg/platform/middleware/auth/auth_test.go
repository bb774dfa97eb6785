package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"kycreview/pkg/requestcontext"
)

type stubValidator struct {
	claims *Claims
	err    error
}

func (v stubValidator) ValidateToken(string) (*Claims, error) { return v.claims, v.err }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen requestcontext.ActorInfo
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAuth(stubValidator{}, logger)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		RequireAuth(stubValidator{err: errors.New("bad signature")}, logger)(next).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown actor type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		v := stubValidator{claims: &Claims{Subject: "x", ActorType: "ROOT"}}
		RequireAuth(v, logger)(next).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token injects actor", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		v := stubValidator{claims: &Claims{Subject: "reviewer-a", ActorType: requestcontext.ActorAdmin, Privileged: true}}
		RequireAuth(v, logger)(next).ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "reviewer-a", seen.ID)
		assert.True(t, seen.Privileged)
	})
}

func TestRequireActorType(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mw := RequireActorType(logger, requestcontext.ActorAdmin, requestcontext.ActorAgent)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(requestcontext.WithActor(r.Context(), requestcontext.ActorInfo{Type: requestcontext.ActorUser, ID: "CUS0123456789ab"}))
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = r.WithContext(requestcontext.WithActor(r.Context(), requestcontext.ActorInfo{Type: requestcontext.ActorAgent, ID: "agent-7"}))
	w = httptest.NewRecorder()
	mw(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}
