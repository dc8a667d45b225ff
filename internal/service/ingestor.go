package service

import (
	"context"
	"fmt"

	"flight-loadgen/internal/broker"
	"flight-loadgen/internal/models"
	"flight-loadgen/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventStore persists ingested orders
type EventStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	InsertOrderEvent(ctx context.Context, eventID string, order models.OrderEvent) error
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// Ingestor writes order envelopes from the broker into the database.
// Redelivered envelopes are skipped.
type Ingestor struct {
	store  EventStore
	logger *zap.Logger
}

// NewIngestor creates a new ingestor
func NewIngestor(store EventStore) *Ingestor {
	return &Ingestor{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HandleMessage decodes and ingests one broker message
func (in *Ingestor) HandleMessage(ctx context.Context, msg kafka.Message) error {
	event, err := broker.DecodeOrderReceived(msg)
	if err != nil {
		return err
	}
	return in.Handle(ctx, event)
}

// Handle ingests one order envelope
func (in *Ingestor) Handle(ctx context.Context, event *models.OrderReceivedEvent) error {
	ctx, span := util.StartSpan(ctx, "Ingestor.Handle")
	defer span.End()

	processed, err := in.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		in.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := in.store.InsertOrderEvent(ctx, event.EventID, event.Order); err != nil {
		return fmt.Errorf("failed to insert order event: %w", err)
	}

	if err := in.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	util.EventsIngestedTotal.Inc()
	in.logger.Debug("Order event ingested",
		zap.String("event_id", event.EventID),
		zap.String("flight_id", event.Order.FlightID),
		zap.String("seat", event.Order.SeatCode))
	return nil
}
