package models

import (
	"strconv"
	"time"
)

// Order statuses
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Payment methods
const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPix        PaymentMethod = "pix"
	PaymentPaypal     PaymentMethod = "paypal"
)

// Status is the reservation status carried by an order event
type Status string

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is the payment method carried by an order event
type PaymentMethod string

// Valid reports whether p is a known payment method
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentPaypal:
		return true
	}
	return false
}

// Price is a monetary amount serialized with exactly two fractional digits
type Price float64

// MarshalJSON renders the price as a JSON number with two decimals
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings
func (p *Price) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Price(v)
	return nil
}

func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// OrderEvent is one synthesized reservation. It is a value type and is
// never mutated after construction.
type OrderEvent struct {
	FlightID        string        `json:"flight_id" db:"flight_id"`
	SeatCode        string        `json:"seat" db:"seat"`
	UserID          string        `json:"user_id" db:"user_id"`
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	Status          Status        `json:"status" db:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method" db:"payment_method"`
	ReservationTime time.Time     `json:"reservation_time" db:"reservation_time"`
	Price           Price         `json:"price" db:"price"`
}

// Ack is the acknowledgment returned by a remote event sink
type Ack struct {
	Message string `json:"message"`
}

// Envelope types
const (
	EventTypeOrderReceived = "ORDER_RECEIVED"
)

// BaseEvent contains common fields for all broker messages
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderReceivedEvent wraps an order event accepted by the receiver
type OrderReceivedEvent struct {
	BaseEvent
	Order OrderEvent `json:"order"`
}
