package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobHistory_KeepsLastHundred(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "j", Success: i%2 == 0, StartTime: time.Now()})
	}

	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}

func TestJobHistory_Empty(t *testing.T) {
	h := &JobHistory{}
	assert.Empty(t, h.GetLatestResults(5))
	assert.Empty(t, h.GetFailedResults())
	assert.Equal(t, 0.0, h.GetSuccessRate())
}

func TestSilentContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsSilent(ctx))
	assert.True(t, IsSilent(WithSilent(ctx)))
}
