package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"flight-loadgen/internal/models"
	"flight-loadgen/internal/sink"
	"flight-loadgen/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type worker struct {
	id    int
	pool  *Pool
	rng   *rand.Rand
	seats []models.SeatRecord
}

func (w *worker) run(ctx context.Context) []models.LatencySample {
	util.ActiveWorkers.Inc()
	defer util.ActiveWorkers.Dec()

	cfg := w.pool.cfg
	ds := w.pool.dataset
	samples := make([]models.LatencySample, 0, len(w.seats))

	for rep, seat := range w.seats {
		if ctx.Err() != nil {
			break
		}

		user := ds.User(w.rng.Intn(len(ds.UserIDs)))
		event := w.pool.synth.Synthesize(seat, user, w.rng)
		util.EventsGeneratedTotal.Inc()

		sample := w.send(ctx, event)
		samples = append(samples, sample)

		if rep < len(w.seats)-1 && cfg.InterCallDelay > 0 {
			if !sleep(ctx, cfg.InterCallDelay) {
				break
			}
		}
	}
	return samples
}

func (w *worker) send(ctx context.Context, event models.OrderEvent) models.LatencySample {
	cfg := w.pool.cfg

	ctx, span := util.StartSpan(ctx, "loadtest.send")
	defer span.End()
	span.SetAttributes(
		attribute.Int("worker.id", w.id),
		attribute.String("order.flight_id", event.FlightID),
		attribute.String("order.seat", event.SeatCode),
	)

	start := time.Now()
	ack, err := callWithTimeout(ctx, w.pool.sink, event, cfg.CallTimeout, cfg.SinkName)
	elapsed := time.Since(start)

	sample := models.LatencySample{WorkerID: w.id, Elapsed: elapsed, Outcome: models.OutcomeOK}
	if err != nil {
		sample.Outcome = models.OutcomeRemoteError
		span.RecordError(err)
		w.pool.logger.Warn("Remote call failed",
			zap.Int("worker", w.id),
			zap.String("flight_id", event.FlightID),
			zap.String("seat", event.SeatCode),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	} else {
		w.pool.logger.Debug("Event sent",
			zap.Int("worker", w.id),
			zap.String("flight_id", event.FlightID),
			zap.String("seat", event.SeatCode),
			zap.String("ack", ack.Message),
			zap.Duration("elapsed", elapsed),
		)
	}

	util.EventsSentTotal.WithLabelValues(cfg.SinkName, string(sample.Outcome)).Inc()
	util.EventSendLatency.WithLabelValues(cfg.SinkName).Observe(elapsed.Seconds())
	return sample
}

// callWithTimeout returns when the sink answers or the timeout fires,
// whichever comes first. A sink that ignores its context is abandoned.
func callWithTimeout(ctx context.Context, s sink.EventSink, event models.OrderEvent, timeout time.Duration, name string) (models.Ack, error) {
	if timeout <= 0 {
		return s.Send(ctx, event)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		ack models.Ack
		err error
	}
	done := make(chan reply, 1)
	go func() {
		ack, err := s.Send(ctx, event)
		done <- reply{ack, err}
	}()

	select {
	case r := <-done:
		return r.ack, r.err
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("call timed out after %s: %w", timeout, err)
		}
		return models.Ack{}, &sink.RemoteCallError{Sink: name, Err: err}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
