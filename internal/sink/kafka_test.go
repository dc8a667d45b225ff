package sink

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flight-loadgen/internal/broker"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestKafkaSinkSend(t *testing.T) {
	w := &memWriter{}
	sink := NewKafkaSink(broker.NewEventPublisher(broker.NewProducerWithWriter(w)))

	ack, err := sink.Send(context.Background(), sampleEvent)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ack.Message, "queued "))
	require.Len(t, w.msgs, 1)

	env, err := broker.DecodeOrderReceived(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, sampleEvent, env.Order)
}

func TestKafkaSinkSendError(t *testing.T) {
	w := &memWriter{err: errors.New("leader not available")}
	sink := NewKafkaSink(broker.NewEventPublisher(broker.NewProducerWithWriter(w)))

	_, err := sink.Send(context.Background(), sampleEvent)

	var rce *RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "kafka", rce.Sink)
}
