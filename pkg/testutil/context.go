package testutil

import (
	"net/http"
	"time"

	"kycreview/pkg/requestcontext"
)

// WithActor attaches an authenticated actor to the request, as the auth
// middleware would.
func WithActor(req *http.Request, actor requestcontext.ActorInfo) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// Customer returns a USER actor owning identityKey.
func Customer(identityKey string) requestcontext.ActorInfo {
	return requestcontext.ActorInfo{Type: requestcontext.ActorUser, ID: identityKey, IdentityKey: identityKey}
}

// Reviewer returns an ADMIN actor.
func Reviewer(name string) requestcontext.ActorInfo {
	return requestcontext.ActorInfo{Type: requestcontext.ActorAdmin, ID: name}
}


// AtTime pins the request clock, as the requesttime middleware would.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
