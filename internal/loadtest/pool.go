// Package loadtest drives a pool of concurrent clients that send synthetic
// orders to a sink and record the latency of every call.
package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"flight-loadgen/internal/generator"
	"flight-loadgen/internal/models"
	"flight-loadgen/internal/refdata"
	"flight-loadgen/internal/sink"
	"flight-loadgen/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config controls the shape of one run
type Config struct {
	NumClients      int
	EventsPerClient int
	// InterCallDelay is slept between repetitions of a client; zero disables it
	InterCallDelay time.Duration
	// CallTimeout bounds every remote call; zero disables it
	CallTimeout time.Duration
	// Seed drives every random choice of the run
	Seed int64
	// SinkName labels metrics and logs
	SinkName string
}

func (c Config) validate() error {
	if c.NumClients < 1 {
		return fmt.Errorf("num clients must be at least 1, got %d", c.NumClients)
	}
	if c.EventsPerClient < 0 {
		return fmt.Errorf("events per client must not be negative, got %d", c.EventsPerClient)
	}
	if c.InterCallDelay < 0 || c.CallTimeout < 0 {
		return fmt.Errorf("delay and timeout must not be negative")
	}
	return nil
}

// SeatLedger remembers seats handed out by earlier runs
type SeatLedger interface {
	ExcludeClaimed(ctx context.Context, inventory []models.SeatRecord) ([]models.SeatRecord, error)
	Claim(ctx context.Context, seats []models.SeatRecord) error
}

// Result is everything a run measured
type Result struct {
	RunID     string
	Samples   []models.LatencySample
	PerWorker [][]models.LatencySample
	Started   time.Time
	Finished  time.Time
}

// Option configures a Pool
type Option func(*Pool)

// WithLedger makes the pool skip and then claim seats in a shared ledger
func WithLedger(l SeatLedger) Option {
	return func(p *Pool) { p.ledger = l }
}

// WithLogger overrides the global logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// Pool runs NumClients workers against one sink
type Pool struct {
	cfg     Config
	dataset *refdata.Dataset
	synth   *generator.Synthesizer
	sink    sink.EventSink
	ledger  SeatLedger
	logger  *zap.Logger
}

// NewPool creates a pool over a loaded dataset
func NewPool(cfg Config, ds *refdata.Dataset, synth *generator.Synthesizer, s sink.EventSink, opts ...Option) *Pool {
	p := &Pool{
		cfg:     cfg,
		dataset: ds,
		synth:   synth,
		sink:    s,
		logger:  util.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run samples every seat the run needs, starts one goroutine per client and
// waits for all of them. Sampling failures abort the run before any call is
// made. Cancelling ctx stops workers after their current call; the samples
// gathered so far are returned.
func (p *Pool) Run(ctx context.Context) (*Result, error) {
	if err := p.cfg.validate(); err != nil {
		return nil, err
	}

	ctx, span := util.StartSpan(ctx, "loadtest.run")
	defer span.End()

	rng := rand.New(rand.NewSource(p.cfg.Seed))
	total := p.cfg.NumClients * p.cfg.EventsPerClient

	inventory := p.dataset.Seats
	if p.ledger != nil {
		var err error
		if inventory, err = p.ledger.ExcludeClaimed(ctx, inventory); err != nil {
			return nil, fmt.Errorf("failed to read seat ledger: %w", err)
		}
	}

	seats, err := generator.Sample(inventory, total, rng)
	if err != nil {
		return nil, err
	}

	if p.ledger != nil {
		if err := p.ledger.Claim(ctx, seats); err != nil {
			return nil, fmt.Errorf("failed to claim seats: %w", err)
		}
	}

	result := &Result{
		RunID:     uuid.New().String(),
		PerWorker: make([][]models.LatencySample, p.cfg.NumClients),
		Started:   time.Now(),
	}

	p.logger.Info("Starting load test",
		zap.String("run_id", result.RunID),
		zap.Int("clients", p.cfg.NumClients),
		zap.Int("events_per_client", p.cfg.EventsPerClient),
		zap.String("sink", p.cfg.SinkName),
		zap.Int64("seed", p.cfg.Seed),
	)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.NumClients; i++ {
		w := &worker{
			id:    i,
			pool:  p,
			rng:   rand.New(rand.NewSource(rng.Int63())),
			seats: seats[i*p.cfg.EventsPerClient : (i+1)*p.cfg.EventsPerClient],
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result.PerWorker[i] = w.run(ctx)
		}(i)
	}
	wg.Wait()

	result.Finished = time.Now()
	result.Samples = make([]models.LatencySample, 0, total)
	for _, buf := range result.PerWorker {
		result.Samples = append(result.Samples, buf...)
	}

	p.logger.Info("Load test finished",
		zap.String("run_id", result.RunID),
		zap.Int("samples", len(result.Samples)),
		zap.Duration("elapsed", result.Finished.Sub(result.Started)),
	)

	return result, nil
}
