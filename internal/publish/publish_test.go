package publish

import (
	"encoding/json"
	"testing"
	"time"

	"codeberg.org/mutker/simtempd/internal/simtemp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPayload(t *testing.T) {
	sample := simtemp.Sample{
		Timestamp:  123456789,
		TempMilliC: 46500,
		Flags:      simtemp.FlagNewSample | simtemp.FlagThresholdCrossed,
	}
	publishedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	raw, err := FormatPayload(sample, publishedAt)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, "2025-06-01T12:00:00Z", payload.Sample.PublishedAt)
	assert.Equal(t, int64(123456789), payload.Sample.TimestampNs)
	assert.Equal(t, int32(46500), payload.Sample.TempMilliC)
	assert.InDelta(t, 46.5, payload.Sample.TempC, 0.0001)
	assert.True(t, payload.Sample.Alert)
}

func TestPendingQueueOrderAndOverflow(t *testing.T) {
	q := newPendingQueue(3)

	for i := byte(0); i < 5; i++ {
		q.push(pendingMsg{topic: "t", payload: []byte{i}})
	}

	assert.Equal(t, 3, q.len())
	assert.Equal(t, uint64(2), q.dropped)

	msgs := q.drainAll()
	require.Len(t, msgs, 3)
	for i, msg := range msgs {
		assert.Equal(t, []byte{byte(i + 2)}, msg.payload, "oldest were discarded, order preserved")
	}

	assert.Zero(t, q.len())
	assert.Nil(t, q.drainAll())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}

	require.NoError(t, p.PublishSample(simtemp.Sample{}))
	require.NoError(t, p.PublishAlert(simtemp.Sample{}))
	require.NoError(t, p.Close())
}
