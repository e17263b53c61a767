package kafka

import (
	"testing"
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestEventPayload(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &domain.AnalysisEvent{
		EventID:         "evt-1",
		RequestID:       "req-1",
		MatchedItem:     "Linen Blazer",
		MatchedImageURL: "https://cdn.example.com/look-1.jpg",
		Score:           0.91,
		Confident:       true,
		ItemsCount:      3,
		Alternatives:    2,
		Duration:        1500 * time.Millisecond,
		CreatedAt:       createdAt,
	}

	payload, err := EventPayload(event)
	require.NoError(t, err)

	var decoded structpb.Struct
	require.NoError(t, proto.Unmarshal(payload, &decoded))

	fields := decoded.AsMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "Linen Blazer", fields["matched_item"])
	assert.Equal(t, 0.91, fields["score"])
	assert.Equal(t, true, fields["confident"])
	assert.Equal(t, float64(3), fields["items_count"])
	assert.Equal(t, float64(2), fields["alternatives"])
	assert.Equal(t, float64(1500), fields["duration_ms"])
	assert.Equal(t, float64(createdAt.UnixNano()), fields["created_at"])
}

func TestEventPayload_GeneratesEventID(t *testing.T) {
	payload, err := EventPayload(&domain.AnalysisEvent{RequestID: "req-2"})
	require.NoError(t, err)

	var decoded structpb.Struct
	require.NoError(t, proto.Unmarshal(payload, &decoded))
	assert.NotEmpty(t, decoded.GetFields()["event_id"].GetStringValue())
}
