package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())
	_, ok := h.Last()
	assert.False(t, ok)

	for i := 0; i < 105; i++ {
		h.Add(JobResult{JobName: "j", StartTime: time.Unix(int64(i), 0), Success: i%5 != 0})
	}

	assert.Len(t, h.Results, historyLimit, "history is capped")
	assert.Equal(t, time.Unix(5, 0), h.Results[0].StartTime)
	assert.Equal(t, 20, h.Failures())
	assert.InDelta(t, 0.8, h.SuccessRate(), 1e-9)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, time.Unix(104, 0), last.StartTime)

	failed, ok := h.LastWith(false)
	require.True(t, ok)
	assert.Equal(t, time.Unix(100, 0), failed.StartTime)
}

func TestJobHistory_LastSuccessSurvivesLaterFailure(t *testing.T) {
	h := &JobHistory{}
	h.Add(JobResult{RunID: "r1", StartTime: time.Unix(1, 0), Success: true})
	h.Add(JobResult{RunID: "r2", StartTime: time.Unix(2, 0), Success: false})

	ok, found := h.LastWith(true)
	require.True(t, found)
	assert.Equal(t, "r1", ok.RunID)
}
