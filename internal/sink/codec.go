package sink

import (
	"fmt"
	"strconv"
	"time"

	"flight-loadgen/internal/models"

	"google.golang.org/protobuf/encoding/protowire"
)

// events.Event field numbers
const (
	fieldFlightID        protowire.Number = 1
	fieldSeat            protowire.Number = 2
	fieldUserID          protowire.Number = 3
	fieldCustomerName    protowire.Number = 4
	fieldStatus          protowire.Number = 5
	fieldPaymentMethod   protowire.Number = 6
	fieldReservationTime protowire.Number = 7
	fieldPrice           protowire.Number = 8
	fieldTimestamp       protowire.Number = 9

	fieldAckMessage protowire.Number = 1
)

// wireEvent is events.Event: the order plus the send time in unix millis
type wireEvent struct {
	Event  models.OrderEvent
	SentAt time.Time
}

// eventCodec encodes events.Event and events.Ack in protobuf wire format
// without generated code
type eventCodec struct{}

func (eventCodec) Name() string { return "proto" }

func (eventCodec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case *wireEvent:
		return m.marshal(), nil
	case *models.Ack:
		return marshalAck(m), nil
	}
	return nil, fmt.Errorf("event codec: cannot marshal %T", v)
}

func (eventCodec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case *wireEvent:
		return m.unmarshal(data)
	case *models.Ack:
		return unmarshalAck(data, m)
	}
	return fmt.Errorf("event codec: cannot unmarshal into %T", v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func (w *wireEvent) marshal() []byte {
	e := w.Event
	var b []byte
	b = appendString(b, fieldFlightID, e.FlightID)
	b = appendString(b, fieldSeat, e.SeatCode)
	b = appendString(b, fieldUserID, e.UserID)
	b = appendString(b, fieldCustomerName, e.CustomerName)
	b = appendString(b, fieldStatus, string(e.Status))
	b = appendString(b, fieldPaymentMethod, string(e.PaymentMethod))
	if !e.ReservationTime.IsZero() {
		b = appendString(b, fieldReservationTime, e.ReservationTime.UTC().Format(time.RFC3339))
	}
	b = appendString(b, fieldPrice, e.Price.String())
	if !w.SentAt.IsZero() {
		b = protowire.AppendTag(b, fieldTimestamp, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(w.SentAt.UnixMilli()))
	}
	return b
}

func (w *wireEvent) unmarshal(b []byte) error {
	*w = wireEvent{}
	e := &w.Event
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num >= fieldFlightID && num <= fieldPrice:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := setEventField(e, num, s); err != nil {
				return err
			}
		case typ == protowire.VarintType && num == fieldTimestamp:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			w.SentAt = time.UnixMilli(int64(v))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func setEventField(e *models.OrderEvent, num protowire.Number, s string) error {
	switch num {
	case fieldFlightID:
		e.FlightID = s
	case fieldSeat:
		e.SeatCode = s
	case fieldUserID:
		e.UserID = s
	case fieldCustomerName:
		e.CustomerName = s
	case fieldStatus:
		e.Status = models.Status(s)
	case fieldPaymentMethod:
		e.PaymentMethod = models.PaymentMethod(s)
	case fieldReservationTime:
		ts, err := parseReservationTime(s)
		if err != nil {
			return fmt.Errorf("reservation_time: %w", err)
		}
		e.ReservationTime = ts
	case fieldPrice:
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		e.Price = models.Price(p)
	}
	return nil
}

// naiveISOLayout matches timestamps without a zone, taken as UTC
const naiveISOLayout = "2006-01-02T15:04:05.999999"

func parseReservationTime(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return ts, nil
	}
	if naive, nerr := time.Parse(naiveISOLayout, s); nerr == nil {
		return naive, nil
	}
	return time.Time{}, err
}

func marshalAck(a *models.Ack) []byte {
	return appendString(nil, fieldAckMessage, a.Message)
}

func unmarshalAck(b []byte, a *models.Ack) error {
	*a = models.Ack{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == fieldAckMessage && typ == protowire.BytesType {
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			a.Message = s
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}
