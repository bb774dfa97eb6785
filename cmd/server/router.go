package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	drafthandler "kycreview/internal/draft/handler"
	identityhandler "kycreview/internal/identity/handler"
	jwttoken "kycreview/internal/jwt_token"
	"kycreview/internal/platform/middleware"
	submissionhandler "kycreview/internal/submission/handler"
	"kycreview/pkg/platform/httputil"
	"kycreview/pkg/platform/middleware/admin"
	"kycreview/pkg/platform/middleware/auth"
	"kycreview/pkg/platform/middleware/metadata"
	"kycreview/pkg/platform/middleware/requesttime"
	"kycreview/pkg/requestcontext"
)

const healthTimeout = 2 * time.Second

// Router builds the full HTTP surface.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(a.log))
	r.Use(middleware.Logger(a.log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	identities := identityhandler.New(a.identities, a.tokens, a.cfg.TokenTTL, a.log)
	submissions := submissionhandler.New(a.submissions, a.log)
	drafts := drafthandler.New(a.drafts, a.log)
	validator := jwttoken.NewJWTServiceAdapter(a.tokens)
	limiter := middleware.NewIPRateLimiter(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, a.log)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		identities.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(a.cfg.AdminAPIToken, a.log))
		identities.RegisterAdmin(r)
	})

	// Customers act on their own record; agents may submit on a customer's behalf.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, a.log))
		r.Use(auth.RequireActorType(a.log, requestcontext.ActorUser, requestcontext.ActorAgent))
		submissions.Register(r)
		drafts.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, a.log))
		r.Use(auth.RequireActorType(a.log, requestcontext.ActorAdmin, requestcontext.ActorAgent))
		submissions.RegisterAdmin(r)
	})

	return r
}

type healthResponse struct {
	Status  string            `json:"status"`
	Storage string            `json:"storage"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	checks := make(map[string]string)
	healthy := true
	probe := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			return
		}
		checks[name] = "ok"
	}
	if a.db != nil {
		probe("postgres", a.db.PingContext)
	}
	if a.redis != nil {
		probe("redis", a.redis.Health)
	}
	if a.sink != nil {
		probe("kafka", a.sink.Ping)
	}

	resp := healthResponse{Status: "ok", Storage: a.storageKind(), Checks: checks}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
