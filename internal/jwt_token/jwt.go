package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/requestcontext"
)

// ActorClaims are the claims of an actor access token. The subject is the
// actor identifier: a reviewer name for staff, the identity key for customers.
type ActorClaims struct {
	ActorType   string `json:"actor_type"`
	IdentityKey string `json:"identity_key,omitempty"`
	Privileged  bool   `json:"privileged,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles actor token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// IssueToken signs a token for actor valid for expiresIn from now.
func (s *JWTService) IssueToken(actor requestcontext.ActorInfo, now time.Time, expiresIn time.Duration) (string, error) {
	if !actor.Type.IsValid() || actor.ID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "actor type and id are required")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{
		ActorType:   string(actor.Type),
		IdentityKey: actor.IdentityKey,
		Privileged:  actor.Privileged,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*ActorClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*ActorClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
