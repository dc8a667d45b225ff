// Package results reduces latency samples into run summaries and appends
// them to a durable log.
package results

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"flight-loadgen/internal/models"
)

// ErrEmptySampleSet is matched by every EmptySampleSetError
var ErrEmptySampleSet = errors.New("empty sample set")

// EmptySampleSetError is returned when a run produced no samples to average
type EmptySampleSetError struct {
	Concurrency int
}

func (e *EmptySampleSetError) Error() string {
	return fmt.Sprintf("no latency samples for concurrency %d", e.Concurrency)
}

func (e *EmptySampleSetError) Is(target error) bool {
	return target == ErrEmptySampleSet
}

// Aggregate computes the mean latency over every sample, failed calls included.
func Aggregate(concurrency int, samples []models.LatencySample) (models.RunSummary, error) {
	if len(samples) == 0 {
		return models.RunSummary{}, &EmptySampleSetError{Concurrency: concurrency}
	}

	var total time.Duration
	for _, s := range samples {
		total += s.Elapsed
	}

	return models.RunSummary{
		Concurrency: concurrency,
		MeanLatency: total / time.Duration(len(samples)),
	}, nil
}

// Stats is a descriptive breakdown of one run
type Stats struct {
	Count     int           `json:"count"`
	Errors    int           `json:"errors"`
	ErrorRate float64       `json:"error_rate"`
	Min       time.Duration `json:"min"`
	Max       time.Duration `json:"max"`
	Mean      time.Duration `json:"mean"`
	P50       time.Duration `json:"p50"`
	P90       time.Duration `json:"p90"`
	P95       time.Duration `json:"p95"`
	P99       time.Duration `json:"p99"`
}

// Summarize computes count, error rate and nearest-rank percentiles.
// An empty sample set yields zero Stats.
func Summarize(samples []models.LatencySample) Stats {
	var st Stats
	if len(samples) == 0 {
		return st
	}

	sorted := make([]time.Duration, len(samples))
	var total time.Duration
	for i, s := range samples {
		sorted[i] = s.Elapsed
		total += s.Elapsed
		if s.Outcome != models.OutcomeOK {
			st.Errors++
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	st.Count = len(samples)
	st.ErrorRate = float64(st.Errors) / float64(st.Count)
	st.Min = sorted[0]
	st.Max = sorted[len(sorted)-1]
	st.Mean = total / time.Duration(st.Count)
	st.P50 = percentile(sorted, 50)
	st.P90 = percentile(sorted, 90)
	st.P95 = percentile(sorted, 95)
	st.P99 = percentile(sorted, 99)
	return st
}

// percentile returns the smallest value with at least p percent of the
// samples at or below it
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := (len(sorted)*p+99)/100 - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
