// Package sink dispatches order events to a remote service.
package sink

import (
	"context"
	"fmt"

	"flight-loadgen/internal/models"
)

// EventSink sends one event and returns the remote acknowledgment.
// Implementations must be safe for concurrent use.
type EventSink interface {
	Send(ctx context.Context, event models.OrderEvent) (models.Ack, error)
}

// Func adapts a function to EventSink
type Func func(ctx context.Context, event models.OrderEvent) (models.Ack, error)

// Send calls f
func (f Func) Send(ctx context.Context, event models.OrderEvent) (models.Ack, error) {
	return f(ctx, event)
}

// RemoteCallError is a transport or application failure of one call
type RemoteCallError struct {
	Sink       string
	StatusCode int
	Err        error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s sink: status %d: %v", e.Sink, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
