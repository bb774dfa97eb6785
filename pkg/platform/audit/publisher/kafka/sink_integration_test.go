//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "kycreview/pkg/domain"
	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/requestcontext"
	"kycreview/pkg/testutil/containers"
)

func TestSinkPublishesKeyedBySubmission(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "kyc.change-log.test"
	sink, err := NewSink([]string{rp.Broker}, topic)
	require.NoError(t, err)
	defer sink.Close()
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))

	subID := id.NewSubmissionID()
	require.NoError(t, sink.Publish(ctx, []audit.Entry{{
		ID: id.NewEntryID(), SubmissionID: subID, Action: audit.ActionReviewStarted,
		ActorType: requestcontext.ActorAdmin, ActorID: "reviewer-a",
		Timestamp: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, subID.String(), string(records[0].Key))

	var msg Message
	require.NoError(t, json.Unmarshal(records[0].Value, &msg))
	assert.Equal(t, "REVIEW_STARTED", msg.Action)
	assert.Equal(t, "reviewer-a", msg.ActorID)
}
