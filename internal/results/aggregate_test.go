package results

import (
	"errors"
	"testing"
	"time"

	"flight-loadgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(outcome models.Outcome, durations ...time.Duration) []models.LatencySample {
	out := make([]models.LatencySample, len(durations))
	for i, d := range durations {
		out[i] = models.LatencySample{WorkerID: i % 2, Elapsed: d, Outcome: outcome}
	}
	return out
}

func TestAggregateMean(t *testing.T) {
	summary, err := Aggregate(2, samples(models.OutcomeOK, time.Second, 3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.RunSummary{Concurrency: 2, MeanLatency: 2 * time.Second}, summary)
}

func TestAggregateIncludesFailures(t *testing.T) {
	in := append(samples(models.OutcomeOK, 100*time.Millisecond),
		samples(models.OutcomeRemoteError, 300*time.Millisecond)...)

	summary, err := Aggregate(1, in)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, summary.MeanLatency)
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(3, nil)

	var empty *EmptySampleSetError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 3, empty.Concurrency)
	assert.ErrorIs(t, err, ErrEmptySampleSet)
}

func TestSummarize(t *testing.T) {
	var in []models.LatencySample
	for i := 1; i <= 100; i++ {
		outcome := models.OutcomeOK
		if i%10 == 0 {
			outcome = models.OutcomeRemoteError
		}
		in = append(in, models.LatencySample{Elapsed: time.Duration(i) * time.Millisecond, Outcome: outcome})
	}

	st := Summarize(in)
	assert.Equal(t, 100, st.Count)
	assert.Equal(t, 10, st.Errors)
	assert.InDelta(t, 0.1, st.ErrorRate, 1e-9)
	assert.Equal(t, time.Millisecond, st.Min)
	assert.Equal(t, 100*time.Millisecond, st.Max)
	assert.Equal(t, 50500*time.Microsecond, st.Mean)
	assert.Equal(t, 50*time.Millisecond, st.P50)
	assert.Equal(t, 90*time.Millisecond, st.P90)
	assert.Equal(t, 95*time.Millisecond, st.P95)
	assert.Equal(t, 99*time.Millisecond, st.P99)
}

func TestSummarizeNearestRank(t *testing.T) {
	st := Summarize(samples(models.OutcomeOK, 3*time.Second, time.Second))
	assert.Equal(t, time.Second, st.P50)
	assert.Equal(t, 3*time.Second, st.P90)
	assert.Equal(t, 3*time.Second, st.P99)

	one := Summarize(samples(models.OutcomeOK, 7*time.Millisecond))
	assert.Equal(t, 7*time.Millisecond, one.P50)
	assert.Equal(t, 7*time.Millisecond, one.P99)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}
