package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "kycreview/pkg/domain"
	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/requestcontext"
)

func TestToMessage(t *testing.T) {
	ts := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	e := audit.Entry{
		ID:           id.NewEntryID(),
		SubmissionID: id.NewSubmissionID(),
		Action:       audit.ActionFieldChanged,
		Field:        "mobile",
		OldValue:     "0711000000",
		NewValue:     "0722000000",
		ActorType:    requestcontext.ActorAgent,
		ActorID:      "agent-7",
		Timestamp:    ts,
	}

	raw, err := json.Marshal(toMessage(e))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "FIELD_CHANGED", decoded["action"])
	assert.Equal(t, "2026-05-02T08:30:00Z", decoded["timestamp"])
	assert.Equal(t, e.SubmissionID.String(), decoded["submission_id"])
	assert.NotContains(t, decoded, "comment")
}
