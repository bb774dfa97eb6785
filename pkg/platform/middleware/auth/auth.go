package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"kycreview/pkg/requestcontext"
)

// TokenValidator validates bearer tokens and returns the actor they carry.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the claims we expect from the token validator.
type Claims struct {
	Subject     string
	ActorType   requestcontext.ActorType
	IdentityKey string
	Privileged  bool
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth validates the bearer token and stores the actor in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			if !claims.ActorType.IsValid() || claims.Subject == "" {
				logger.WarnContext(ctx, "unauthorized access - malformed actor claims",
					"actor_type", string(claims.ActorType),
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithActor(ctx, requestcontext.ActorInfo{
				Type:        claims.ActorType,
				ID:          claims.Subject,
				IdentityKey: claims.IdentityKey,
				Privileged:  claims.Privileged,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActorType rejects actors whose type is not in allowed.
// Must run after RequireAuth.
func RequireActorType(logger *slog.Logger, allowed ...requestcontext.ActorType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := requestcontext.Actor(ctx)
			if !slices.Contains(allowed, actor.Type) {
				logger.WarnContext(ctx, "forbidden - actor type not allowed",
					"actor_type", string(actor.Type),
					"actor_id", actor.ID,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Actor not allowed for this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
