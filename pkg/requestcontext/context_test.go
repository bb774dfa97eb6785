package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Actor(ctx).IsZero())

	actor := ActorInfo{Type: ActorAdmin, ID: "reviewer-a"}
	ctx = WithActor(ctx, actor)
	assert.Equal(t, actor, Actor(ctx))
}

func TestActorTypes(t *testing.T) {
	assert.True(t, ActorAgent.IsStaff())
	assert.True(t, ActorAdmin.IsStaff())
	assert.False(t, ActorUser.IsStaff())
	assert.False(t, ActorType("ROOT").IsValid())
	assert.True(t, ActorSystem.IsValid())
}

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))

	fixed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
}
