package models

import "time"

// Call outcomes
const (
	OutcomeOK          Outcome = "ok"
	OutcomeRemoteError Outcome = "remote_error"
)

// Outcome classifies one remote call
type Outcome string

// LatencySample is the measurement of one remote call made by a worker
type LatencySample struct {
	WorkerID int           `json:"worker_id"`
	Elapsed  time.Duration `json:"elapsed"`
	Outcome  Outcome       `json:"outcome"`
}

// RunSummary is the persisted result of one load test run
type RunSummary struct {
	Concurrency int           `db:"concurrency" json:"concurrency"`
	MeanLatency time.Duration `db:"-" json:"mean_latency"`
}
