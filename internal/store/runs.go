package store

import (
	"context"

	"flight-loadgen/internal/models"
)

// AppendRunSummary inserts one row per completed run
func (s *Store) AppendRunSummary(ctx context.Context, runID string, summary models.RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO run_summaries (run_id, concurrency, mean_latency_seconds) VALUES ($1, $2, $3)",
		runID, summary.Concurrency, summary.MeanLatency.Seconds())
	return err
}
