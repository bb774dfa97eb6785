package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idmodels "kycreview/internal/identity/models"
	idstore "kycreview/internal/identity/store"
	"kycreview/internal/submission/service"
	"kycreview/internal/submission/store"
	"kycreview/pkg/platform/audit/publisher"
	auditmemory "kycreview/pkg/platform/audit/store/memory"
	"kycreview/pkg/requestcontext"
	"kycreview/pkg/testutil"
)

const key = "CUS0123456789ab"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	identities := idstore.NewInMemory()
	_, _, err := identities.GetOrCreate(context.Background(), &idmodels.Identity{
		Key:       key,
		FirstName: "Ram",
		LastName:  "Sharma",
		DOB:       time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		KycStatus: idmodels.KycStatusNotInitiated,
	})
	require.NoError(t, err)

	svc := service.New(store.NewInMemory(), identities,
		publisher.NewRecorder(auditmemory.NewInMemoryStore(), publisher.WithLogger(logger)),
		service.WithLogger(logger))
	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return r
}

var form = map[string]any{"first_name": "Ram", "last_name": "Sharma", "dob": "1990-01-15", "mobile": "9800000001"}

func do(t *testing.T, router http.Handler, actor requestcontext.ActorInfo, at time.Time, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = testutil.NewRequest(t, method, path)
	} else {
		req = testutil.NewJSONRequest(t, method, path, body)
	}
	req = testutil.AtTime(testutil.WithActor(req, actor), at)
	return testutil.DoRequest(router, req)
}

func TestReviewFlow(t *testing.T) {
	router := newRouter(t)
	t0 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	customer := testutil.Customer(key)
	reviewerA := testutil.Reviewer("reviewer-a")
	reviewerB := testutil.Reviewer("reviewer-b")

	rr := do(t, router, customer, t0, http.MethodPost, "/kyc/submit", map[string]any{"form": form})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	sub := testutil.UnmarshalResponse[submissionResponse](t, rr)
	assert.Equal(t, "PENDING", sub.Status)
	assert.Equal(t, int64(1), sub.Version)
	base := "/admin/kyc/" + sub.ID

	rr = do(t, router, reviewerA, t0, http.MethodPost, base+"/review", nil)
	testutil.AssertStatusOK(t, rr)
	token := testutil.UnmarshalResponse[lockTokenResponse](t, rr)
	assert.Equal(t, "reviewer-a", token.Holder)
	assert.Equal(t, "acquired", token.Outcome)

	rr = do(t, router, reviewerB, t0.Add(5*time.Minute), http.MethodPost, base+"/review", nil)
	testutil.AssertStatus(t, rr, http.StatusConflict)
	errResp := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "locked_by_other", errResp["error"])
	assert.Equal(t, "reviewer-a", errResp["locked_by"])

	rr = do(t, router, reviewerA, t0.Add(time.Minute), http.MethodPost, base+"/decision",
		map[string]any{"status": "REJECTED", "version": token.Version})
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "missing_comment")

	rr = do(t, router, reviewerA, t0.Add(time.Minute), http.MethodPost, base+"/decision",
		map[string]any{"status": "REJECTED", "comment": "Missing citizenship doc", "version": sub.Version})
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "stale_version")

	rr = do(t, router, reviewerA, t0.Add(time.Minute), http.MethodPost, base+"/decision",
		map[string]any{"status": "REJECTED", "comment": "Missing citizenship doc", "version": token.Version})
	testutil.AssertStatusOK(t, rr)
	rejected := testutil.UnmarshalResponse[submissionResponse](t, rr)
	assert.Equal(t, "REJECTED", rejected.Status)
	assert.Empty(t, rejected.CurrentlyReviewedBy)

	rr = do(t, router, reviewerA, t0.Add(2*time.Minute), http.MethodGet, base+"/history", nil)
	testutil.AssertStatusOK(t, rr)
	history := testutil.UnmarshalResponse[historyResponse](t, rr)
	require.NotEmpty(t, history.Entries)
	assert.Equal(t, "reviewer-a", history.Entries[0].ActorID)

	rr = do(t, router, customer, t0.Add(3*time.Minute), http.MethodGet, "/kyc/form", nil)
	testutil.AssertStatusOK(t, rr)
	prefill := testutil.UnmarshalResponse[prefillResponse](t, rr)
	assert.True(t, prefill.CanEdit)
	assert.Equal(t, "Missing citizenship doc", prefill.RejectionComment)
}

func TestAdminQueries(t *testing.T) {
	router := newRouter(t)
	t0 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	reviewer := testutil.Reviewer("reviewer-a")

	rr := do(t, router, testutil.Customer(key), t0, http.MethodPost, "/kyc/submit", map[string]any{"form": form})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = do(t, router, reviewer, t0, http.MethodGet, "/admin/kyc?status=pending", nil)
	testutil.AssertStatusOK(t, rr)
	list := testutil.UnmarshalResponse[listResponse](t, rr)
	assert.Len(t, list.Submissions, 1)

	rr = do(t, router, reviewer, t0, http.MethodGet, "/admin/kyc/stats", nil)
	testutil.AssertStatusOK(t, rr)
	stats := testutil.UnmarshalResponse[statsResponse](t, rr)
	assert.Equal(t, 1, stats.Pending)

	rr = do(t, router, reviewer, t0, http.MethodGet, "/admin/kyc/not-a-uuid", nil)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")

	rr = do(t, router, reviewer, t0, http.MethodGet, "/admin/kyc?limit=abc", nil)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestSubmitRejectsUnknownFormFields(t *testing.T) {
	router := newRouter(t)
	rr := do(t, router, testutil.Customer(key), time.Now(), http.MethodPost, "/kyc/submit",
		map[string]any{"form": map[string]any{"first_name": "Ram", "favourite_colour": "blue"}})
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}
