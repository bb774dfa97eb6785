//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycreview/internal/identity/models"
	"kycreview/internal/identity/store"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
	"kycreview/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
	s.now = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) identity(key id.IdentityKey) *models.Identity {
	return &models.Identity{
		Key: key, FirstName: "Ram", LastName: "Sharma",
		DOB:       time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Contact:   "9800000000",
		KycStatus: models.KycStatusNotInitiated, CreatedAt: s.now, UpdatedAt: s.now,
	}
}

func (s *PostgresStoreSuite) TestGetOrCreateKeepsFirstWriter() {
	ctx := context.Background()
	_, created, err := s.store.GetOrCreate(ctx, s.identity("CUS0000000000d1"))
	s.Require().NoError(err)
	s.True(created)

	dup := s.identity("CUS0000000000d1")
	dup.FirstName = "Other"
	got, created, err := s.store.GetOrCreate(ctx, dup)
	s.Require().NoError(err)
	s.False(created)
	s.Equal("Ram", got.FirstName)
	s.True(models.SameDate(got.DOB, dup.DOB))
}

func (s *PostgresStoreSuite) TestLinksResolveToOneIdentity() {
	ctx := context.Background()
	_, _, err := s.store.GetOrCreate(ctx, s.identity("CUS0000000000d1"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpsertLinks(ctx, []models.PolicyLink{
		{PolicyNo: "P-100", IdentityKey: "CUS0000000000d1", BranchCode: "KTM", BranchName: "Kathmandu", CreatedAt: s.now},
		{PolicyNo: "P-200", IdentityKey: "CUS0000000000d1", CreatedAt: s.now},
	}))
	// Re-linking without branch data keeps what was stored.
	s.Require().NoError(s.store.UpsertLinks(ctx, []models.PolicyLink{
		{PolicyNo: "P-100", IdentityKey: "CUS0000000000d1", CreatedAt: s.now.Add(time.Hour)},
	}))

	key, err := s.store.FindLinkedKey(ctx, []id.PolicyNumber{"P-999", "P-200"})
	s.Require().NoError(err)
	s.Equal(id.IdentityKey("CUS0000000000d1"), key)

	byPolicy, err := s.store.FindByPolicy(ctx, "P-100")
	s.Require().NoError(err)
	s.Equal(id.IdentityKey("CUS0000000000d1"), byPolicy.Key)

	links, err := s.store.ListPolicies(ctx, "CUS0000000000d1")
	s.Require().NoError(err)
	s.Require().Len(links, 2)
	s.Equal("Kathmandu", links[0].BranchName)

	_, err = s.store.FindLinkedKey(ctx, []id.PolicyNumber{"P-999"})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCredentialAndStatus() {
	ctx := context.Background()
	_, _, err := s.store.GetOrCreate(ctx, s.identity("CUS0000000000d1"))
	s.Require().NoError(err)

	set, err := s.store.SetCredentialIfEmpty(ctx, "CUS0000000000d1", "hash-1", s.now)
	s.Require().NoError(err)
	s.True(set)
	set, err = s.store.SetCredentialIfEmpty(ctx, "CUS0000000000d1", "hash-2", s.now)
	s.Require().NoError(err)
	s.False(set)

	s.Require().NoError(s.store.UpdateStatus(ctx, "CUS0000000000d1", models.KycStatusPending, s.now))
	got, err := s.store.FindByKey(ctx, "CUS0000000000d1")
	s.Require().NoError(err)
	s.Equal(models.KycStatusPending, got.KycStatus)
	s.Equal("hash-1", got.CredentialHash)

	s.ErrorIs(s.store.UpdateStatus(ctx, "CUS0000000000ff", models.KycStatusPending, s.now), sentinel.ErrNotFound)
}
