package worker

import (
	"context"
	"testing"

	"flight-loadgen/internal/broker"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type chanConsumer struct {
	msgs   chan kafka.Message
	closed bool
}

func (c *chanConsumer) StartConsuming(ctx context.Context, handler broker.MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.msgs:
			if !ok {
				return nil
			}
			_ = handler(ctx, msg)
		}
	}
}

func (c *chanConsumer) Close() error {
	c.closed = true
	return nil
}

func TestIngestWorkerDeliversMessages(t *testing.T) {
	c := &chanConsumer{msgs: make(chan kafka.Message, 2)}
	c.msgs <- kafka.Message{Offset: 1}
	c.msgs <- kafka.Message{Offset: 2}
	close(c.msgs)

	var offsets []int64
	w := NewIngestWorker(c, func(ctx context.Context, msg kafka.Message) error {
		offsets = append(offsets, msg.Offset)
		return nil
	})

	assert.NoError(t, w.Start(context.Background()))
	assert.Equal(t, []int64{1, 2}, offsets)

	assert.NoError(t, w.Stop())
	assert.True(t, c.closed)
}

func TestIngestWorkerStopsOnCancel(t *testing.T) {
	c := &chanConsumer{msgs: make(chan kafka.Message)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewIngestWorker(c, func(ctx context.Context, msg kafka.Message) error { return nil })
	assert.ErrorIs(t, w.Start(ctx), context.Canceled)
}
