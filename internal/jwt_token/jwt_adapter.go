package jwttoken

import (
	authmw "kycreview/pkg/platform/middleware/auth"
	"kycreview/pkg/requestcontext"
)

func ToMiddlewareClaims(claims *ActorClaims) *authmw.Claims {
	return &authmw.Claims{
		Subject:     claims.Subject,
		ActorType:   requestcontext.ActorType(claims.ActorType),
		IdentityKey: claims.IdentityKey,
		Privileged:  claims.Privileged,
	}
}

// JWTServiceAdapter lets the auth middleware validate tokens without
// depending on the jwt package.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
