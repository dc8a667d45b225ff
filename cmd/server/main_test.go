package main

import (
	"context"
	"testing"
	"time"

	"flight-loadgen/config"
	"flight-loadgen/internal/models"
	"flight-loadgen/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherWithoutBrokers(t *testing.T) {
	pub, closePub := newPublisher(config.KafkaConfig{TopicOrder: "order-events"})
	defer closePub()
	assert.Nil(t, pub)

	ack, err := service.NewEventService(pub).SendEvent(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "received", ack.Message)
}

func TestNewPublisherWithBrokers(t *testing.T) {
	pub, closePub := newPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, TopicOrder: "order-events"})
	defer closePub()
	assert.NotNil(t, pub)
}

func sampleOrder() models.OrderEvent {
	return models.OrderEvent{
		FlightID:        "AAA-1",
		SeatCode:        "A1",
		UserID:          "1",
		CustomerName:    "ana",
		Status:          models.StatusConfirmed,
		PaymentMethod:   models.PaymentPix,
		ReservationTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:           10,
	}
}
