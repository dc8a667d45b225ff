package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flight-loadgen/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing order events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderReceived wraps an order in an envelope and publishes it keyed
// by flight so events of one flight stay ordered on a partition
func (ep *EventPublisher) PublishOrderReceived(ctx context.Context, order models.OrderEvent) (*models.OrderReceivedEvent, error) {
	event := &models.OrderReceivedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderReceived,
			Timestamp: time.Now().UTC(),
		},
		Order: order,
	}

	if err := ep.producer.PublishEvent(ctx, order.FlightID, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DecodeOrderReceived parses a broker message into an order envelope
func DecodeOrderReceived(msg kafka.Message) (*models.OrderReceivedEvent, error) {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return nil, fmt.Errorf("failed to unmarshal base event: %w", err)
	}
	if base.EventType != models.EventTypeOrderReceived {
		return nil, fmt.Errorf("unexpected event type: %s", base.EventType)
	}

	var event models.OrderReceivedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OrderReceived event: %w", err)
	}
	return &event, nil
}
