package worker

import (
	"context"

	"flight-loadgen/internal/broker"
	"flight-loadgen/internal/util"

	"go.uber.org/zap"
)

// Consumer is the part of broker.Consumer the worker drives
type Consumer interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// IngestWorker drains the order topic into the database
type IngestWorker struct {
	consumer Consumer
	handler  broker.MessageHandler
	logger   *zap.Logger
}

// NewIngestWorker creates a new ingest worker
func NewIngestWorker(consumer Consumer, handler broker.MessageHandler) *IngestWorker {
	return &IngestWorker{
		consumer: consumer,
		handler:  handler,
		logger:   util.GetLogger(),
	}
}

// Start blocks until ctx is cancelled or the consumer fails
func (w *IngestWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting ingest worker")
	return w.consumer.StartConsuming(ctx, w.handler)
}

// Stop stops the worker
func (w *IngestWorker) Stop() error {
	w.logger.Info("Stopping ingest worker")
	return w.consumer.Close()
}
