package sink

import (
	"context"

	"flight-loadgen/internal/broker"
	"flight-loadgen/internal/models"
)

// KafkaSink publishes events straight to the order topic, bypassing the
// receiver. The broker acknowledgment is the remote call.
type KafkaSink struct {
	publisher *broker.EventPublisher
}

// NewKafkaSink creates a sink on top of a publisher
func NewKafkaSink(publisher *broker.EventPublisher) *KafkaSink {
	return &KafkaSink{publisher: publisher}
}

// Send publishes one event
func (s *KafkaSink) Send(ctx context.Context, event models.OrderEvent) (models.Ack, error) {
	published, err := s.publisher.PublishOrderReceived(ctx, event)
	if err != nil {
		return models.Ack{}, &RemoteCallError{Sink: "kafka", Err: err}
	}
	return models.Ack{Message: "queued " + published.EventID}, nil
}
