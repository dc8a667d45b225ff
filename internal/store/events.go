package store

import (
	"context"

	"flight-loadgen/internal/models"
)

// InsertOrderEvent stores an ingested order. Re-inserting the same event id
// is a no-op.
func (s *Store) InsertOrderEvent(ctx context.Context, eventID string, order models.OrderEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_events
			(event_id, flight_id, seat, user_id, customer_name, status, payment_method, reservation_time, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, order.FlightID, order.SeatCode, order.UserID, order.CustomerName,
		string(order.Status), string(order.PaymentMethod), order.ReservationTime, float64(order.Price))
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
