package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	before := m.GetSnapshot().LastUpdateTime

	m.IncrementInterviewsStarted()
	m.IncrementAnswersSubmitted()
	m.IncrementAnswersSubmitted()
	m.IncrementUploadFailures()
	m.IncrementMicFailures()
	m.IncrementRetries()
	m.IncrementLoadFailures()
	m.IncrementInterviewsCompleted()
	m.IncrementAPICall(true)
	m.IncrementAPICall(false)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(1), snap.InterviewsStarted)
	assert.Equal(t, int64(2), snap.AnswersSubmitted)
	assert.Equal(t, int64(1), snap.UploadFailures)
	assert.Equal(t, int64(1), snap.MicFailures)
	assert.Equal(t, int64(1), snap.Retries)
	assert.Equal(t, int64(1), snap.LoadFailures)
	assert.Equal(t, int64(1), snap.InterviewsCompleted)
	assert.Equal(t, int64(2), snap.APICallsTotal)
	assert.Equal(t, int64(1), snap.APICallsSuccessful)
	assert.False(t, snap.LastUpdateTime.Before(before))
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementAPICall(true)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.GetSnapshot().APICallsTotal)
}

func TestNilMetricsIgnoresUpdates(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.IncrementRetries()
	assert.Equal(t, Snapshot{}, m.GetSnapshot())
}
