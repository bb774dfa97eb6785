package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycreview/internal/draft/models"
	"kycreview/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.now = func() time.Time { return now }

	d := &models.Draft{IdentityKey: "CUS000000000001", Form: json.RawMessage(`{"first_name":"Ram"}`), UpdatedAt: now}
	require.NoError(t, s.Save(ctx, d, time.Hour))

	got, err := s.Get(ctx, "CUS000000000001")
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"Ram"}`, string(got.Form))

	t.Run("expired draft is gone", func(t *testing.T) {
		now = now.Add(time.Hour)
		_, err := s.Get(ctx, "CUS000000000001")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, d, time.Hour))
		require.NoError(t, s.Delete(ctx, "CUS000000000001"))
		require.NoError(t, s.Delete(ctx, "CUS000000000001"))
		_, err := s.Get(ctx, "CUS000000000001")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
