package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.RecordSuccess("openrouter", 100*time.Millisecond)
	r.RecordSuccess("openrouter", 300*time.Millisecond)
	r.RecordFailure("openrouter", 200*time.Millisecond)
	r.RecordCost("openrouter", 0.002)
	r.RecordCost("openrouter", 0.003)

	snap := r.Snapshot()
	stats, ok := snap["openrouter"]
	require.True(t, ok)

	assert.Equal(t, int64(2), stats.SuccessCount)
	assert.Equal(t, int64(1), stats.FailureCount)
	assert.InDelta(t, 0.005, stats.TotalCostUSD, 1e-9)
	assert.Equal(t, 200*time.Millisecond, stats.AvgLatency)
}

func TestRecorder_SnapshotIsACopy(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	r.RecordSuccess("gemini-image", time.Millisecond)

	snap := r.Snapshot()
	s := snap["gemini-image"]
	s.SuccessCount = 99

	assert.Equal(t, int64(1), r.Snapshot()["gemini-image"].SuccessCount)
}

func TestRecorder_NegativeCostIgnored(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	r.RecordCost("placeholder", 0)
	r.RecordCost("placeholder", -1)
	_, ok := r.Snapshot()["placeholder"]
	assert.False(t, ok)
}
