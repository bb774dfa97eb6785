//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycreview/internal/draft/models"
	"kycreview/internal/draft/store"
	"kycreview/pkg/platform/sentinel"
	"kycreview/pkg/testutil/containers"
)

func TestRedisDraftLifecycle(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	s := store.NewRedis(rc.Client)
	d := &models.Draft{
		IdentityKey: "CUS0000000000c1",
		Form:        json.RawMessage(`{"first_name":"Ram"}`),
		UpdatedAt:   time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(ctx, d, time.Hour))

	got, err := s.Get(ctx, "CUS0000000000c1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"Ram"}`, string(got.Form))

	ttl, err := rc.Client.TTL(ctx, "kyc:draft:CUS0000000000c1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	require.NoError(t, s.Delete(ctx, "CUS0000000000c1"))
	_, err = s.Get(ctx, "CUS0000000000c1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
