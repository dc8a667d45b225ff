package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"flight-loadgen/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEventStore struct {
	processed map[string]bool
	orders    map[string]models.OrderEvent
	insertErr error
}

func newMemEventStore() *memEventStore {
	return &memEventStore{processed: map[string]bool{}, orders: map[string]models.OrderEvent{}}
}

func (m *memEventStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	return m.processed[eventID], nil
}

func (m *memEventStore) InsertOrderEvent(ctx context.Context, eventID string, order models.OrderEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.orders[eventID] = order
	return nil
}

func (m *memEventStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	m.processed[eventID] = true
	return nil
}

func envelope(id string) *models.OrderReceivedEvent {
	return &models.OrderReceivedEvent{
		BaseEvent: models.BaseEvent{EventID: id, EventType: models.EventTypeOrderReceived},
		Order:     validEvent(),
	}
}

func TestIngestorHandle(t *testing.T) {
	st := newMemEventStore()
	in := NewIngestor(st)

	require.NoError(t, in.Handle(context.Background(), envelope("e1")))
	assert.Equal(t, validEvent(), st.orders["e1"])
	assert.True(t, st.processed["e1"])
}

func TestIngestorSkipsRedelivery(t *testing.T) {
	st := newMemEventStore()
	st.processed["e1"] = true

	require.NoError(t, NewIngestor(st).Handle(context.Background(), envelope("e1")))
	assert.Empty(t, st.orders)
}

func TestIngestorInsertFailureLeavesUnprocessed(t *testing.T) {
	st := newMemEventStore()
	st.insertErr = errors.New("db down")

	err := NewIngestor(st).Handle(context.Background(), envelope("e1"))
	assert.ErrorContains(t, err, "failed to insert order event")
	assert.False(t, st.processed["e1"])
}

func TestIngestorHandleMessage(t *testing.T) {
	st := newMemEventStore()
	payload, err := json.Marshal(envelope("e2"))
	require.NoError(t, err)

	require.NoError(t, NewIngestor(st).HandleMessage(context.Background(), kafka.Message{Value: payload}))
	assert.Contains(t, st.orders, "e2")

	err = NewIngestor(st).HandleMessage(context.Background(), kafka.Message{Value: []byte(`{"event_type":"OTHER"}`)})
	assert.Error(t, err)
}
