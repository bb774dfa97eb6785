package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycreview/pkg/domain-errors"
	"kycreview/pkg/requestcontext"
)

var jwtService = NewJWTService("test-signing-key", "kycreview", "kycreview-api")

var reviewer = requestcontext.ActorInfo{Type: requestcontext.ActorAdmin, ID: "reviewer-a", Privileged: true}

func Test_IssueToken(t *testing.T) {
	now := time.Now()
	token, err := jwtService.IssueToken(reviewer, now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reviewer-a", claims.Subject)
	assert.Equal(t, "ADMIN", claims.ActorType)
	assert.True(t, claims.Privileged)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_IssueToken_RejectsUnknownActor(t *testing.T) {
	_, err := jwtService.IssueToken(requestcontext.ActorInfo{Type: "ROOT", ID: "x"}, time.Now(), time.Hour)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.IssueToken(reviewer, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", err.Error())
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "kycreview", "someone-else")
	token, err := other.IssueToken(reviewer, time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Adapter(t *testing.T) {
	customer := requestcontext.ActorInfo{Type: requestcontext.ActorUser, ID: "CUS0123456789ab", IdentityKey: "CUS0123456789ab"}
	token, err := jwtService.IssueToken(customer, time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, requestcontext.ActorUser, claims.ActorType)
	assert.Equal(t, "CUS0123456789ab", claims.IdentityKey)
	assert.False(t, claims.Privileged)
}
