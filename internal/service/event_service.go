package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flight-loadgen/internal/models"
	"flight-loadgen/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrInvalidEvent is matched by every ValidationError
var ErrInvalidEvent = errors.New("invalid order event")

// ValidationError reports the first offending field of a rejected event
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEvent
}

// OrderPublisher forwards accepted orders downstream
type OrderPublisher interface {
	PublishOrderReceived(ctx context.Context, order models.OrderEvent) (*models.OrderReceivedEvent, error)
}

// EventService is the receiving end of the load generator
type EventService struct {
	publisher OrderPublisher
	logger    *zap.Logger
}

// NewEventService creates an event service. A nil publisher acknowledges
// valid events without forwarding them.
func NewEventService(publisher OrderPublisher) *EventService {
	return &EventService{
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Accept validates an event and publishes it
func (s *EventService) Accept(ctx context.Context, event models.OrderEvent, transport string) (models.Ack, error) {
	ctx, span := util.StartSpan(ctx, "EventService.Accept")
	defer span.End()
	span.SetAttributes(
		attribute.String("transport", transport),
		attribute.String("order.flight_id", event.FlightID),
	)

	if err := Validate(event); err != nil {
		var ve *ValidationError
		errors.As(err, &ve)
		util.EventsRejectedTotal.WithLabelValues(ve.Field).Inc()
		s.logger.Warn("Rejected order event",
			zap.String("transport", transport),
			zap.String("flight_id", event.FlightID),
			zap.Error(err))
		return models.Ack{}, err
	}

	if s.publisher == nil {
		util.EventsReceivedTotal.WithLabelValues(transport, string(event.Status)).Inc()
		return models.Ack{Message: "received"}, nil
	}

	published, err := s.publisher.PublishOrderReceived(ctx, event)
	if err != nil {
		util.EventsRejectedTotal.WithLabelValues("publish").Inc()
		span.RecordError(err)
		return models.Ack{}, fmt.Errorf("failed to publish order event: %w", err)
	}

	util.EventsReceivedTotal.WithLabelValues(transport, string(event.Status)).Inc()
	s.logger.Debug("Order event accepted",
		zap.String("event_id", published.EventID),
		zap.String("flight_id", event.FlightID),
		zap.String("seat", event.SeatCode))

	return models.Ack{Message: "received " + published.EventID}, nil
}

// SendEvent serves the gRPC transport
func (s *EventService) SendEvent(ctx context.Context, event models.OrderEvent) (models.Ack, error) {
	ack, err := s.Accept(ctx, event, "grpc")
	if err == nil {
		return ack, nil
	}
	if errors.Is(err, ErrInvalidEvent) {
		return ack, status.Error(codes.InvalidArgument, err.Error())
	}
	return ack, status.Error(codes.Unavailable, err.Error())
}

// Validate checks that every field of an event is populated and that the
// categorical fields hold known values
func Validate(event models.OrderEvent) error {
	required := []struct {
		field string
		value string
	}{
		{"flight_id", event.FlightID},
		{"seat", event.SeatCode},
		{"user_id", event.UserID},
		{"customer_name", event.CustomerName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "must not be empty"}
		}
	}

	if !event.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", event.Status)}
	}
	if !event.PaymentMethod.Valid() {
		return &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("unknown value %q", event.PaymentMethod)}
	}
	if event.ReservationTime.IsZero() {
		return &ValidationError{Field: "reservation_time", Reason: "must be set"}
	}
	if event.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}
