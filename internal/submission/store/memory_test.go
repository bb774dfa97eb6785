package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycreview/internal/submission/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
	"kycreview/pkg/requestcontext"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) create(key id.IdentityKey) *models.Submission {
	sub := models.NewSubmission(key, models.FormData{FirstName: "Ram", LastName: "Sharma"}, nil,
		requestcontext.ActorInfo{Type: requestcontext.ActorUser, ID: string(key)}, s.now)
	s.Require().NoError(s.store.Create(context.Background(), sub))
	return sub
}

func (s *InMemoryStoreSuite) TestCreateIsOnePerIdentity() {
	s.create("CUS000000000001")

	dup := models.NewSubmission("CUS000000000001", models.FormData{}, nil, requestcontext.ActorInfo{}, s.now)
	err := s.store.Create(context.Background(), dup)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestExecuteBumpsVersionOnWrite() {
	ctx := context.Background()
	sub := s.create("CUS000000000001")

	got, err := s.store.Execute(ctx, sub.ID,
		func(*models.Submission) error { return nil },
		func(cur *models.Submission) bool { cur.Form.FirstName = "Hari"; return true })
	s.Require().NoError(err)
	s.Equal(int64(2), got.Version)

	stored, err := s.store.FindByIdentity(ctx, "CUS000000000001")
	s.Require().NoError(err)
	s.Equal("Hari", stored.Form.FirstName)
	s.Equal(int64(2), stored.Version)
}

func (s *InMemoryStoreSuite) TestExecuteWithoutChangeKeepsVersion() {
	ctx := context.Background()
	sub := s.create("CUS000000000001")

	got, err := s.store.Execute(ctx, sub.ID,
		func(*models.Submission) error { return nil },
		func(*models.Submission) bool { return false })
	s.Require().NoError(err)
	s.Equal(int64(1), got.Version)
}

func (s *InMemoryStoreSuite) TestExecuteValidationFailureLeavesRecord() {
	ctx := context.Background()
	sub := s.create("CUS000000000001")
	boom := errors.New("rejected")

	_, err := s.store.Execute(ctx, sub.ID,
		func(cur *models.Submission) error { cur.Form.FirstName = "mutated"; return boom },
		func(*models.Submission) bool { s.Fail("mutate must not run"); return true })
	s.ErrorIs(err, boom)

	stored, err := s.store.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal("Ram", stored.Form.FirstName)
	s.Equal(int64(1), stored.Version)
}

func (s *InMemoryStoreSuite) TestExecuteUnknownID() {
	_, err := s.store.Execute(context.Background(), id.NewSubmissionID(),
		func(*models.Submission) error { return nil },
		func(*models.Submission) bool { return true })
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	ctx := context.Background()
	sub := s.create("CUS000000000001")

	got, err := s.store.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	got.Status = models.StatusVerified

	again, err := s.store.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, again.Status)
}

func (s *InMemoryStoreSuite) TestListAndCount() {
	ctx := context.Background()
	first := s.create("CUS000000000001")
	s.now = s.now.Add(time.Minute)
	s.create("CUS000000000002")

	_, err := s.store.Execute(ctx, first.ID,
		func(*models.Submission) error { return nil },
		func(cur *models.Submission) bool {
			cur.Status = models.StatusRejected
			cur.UpdatedAt = s.now.Add(time.Hour)
			return true
		})
	s.Require().NoError(err)

	all, err := s.store.List(ctx, ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(first.ID, all[0].ID)

	pending, err := s.store.List(ctx, ListFilter{Status: models.StatusPending})
	s.Require().NoError(err)
	s.Len(pending, 1)

	page, err := s.store.List(ctx, ListFilter{Offset: 5})
	s.Require().NoError(err)
	s.Empty(page)

	counts, err := s.store.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(1, counts[models.StatusPending])
	s.Equal(1, counts[models.StatusRejected])
}

func (s *InMemoryStoreSuite) TestListFilterNormalized() {
	s.Equal(DefaultListLimit, ListFilter{}.Normalized().Limit)
	s.Equal(MaxListLimit, ListFilter{Limit: 1000}.Normalized().Limit)
	s.Equal(0, ListFilter{Offset: -3}.Normalized().Offset)
}
