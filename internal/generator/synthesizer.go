package generator

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"flight-loadgen/internal/models"
)

const (
	DefaultFlightPrefix = "AAA-"
	DefaultWindow       = 600 * 24 * time.Hour
)

// Synthesizer turns a seat and a user into an order event
type Synthesizer struct {
	prefix   string
	window   time.Duration
	now      time.Time
	statuses *Categorical[models.Status]
	payments *Categorical[models.PaymentMethod]
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithClock fixes the end of the reservation window
func WithClock(now time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// WithFlightPrefix overrides the flight id prefix
func WithFlightPrefix(prefix string) Option {
	return func(s *Synthesizer) { s.prefix = prefix }
}

// WithWindow overrides how far back reservation times may go. A negative
// window is treated as zero.
func WithWindow(d time.Duration) Option {
	return func(s *Synthesizer) { s.window = d }
}

// WithStatusWeights replaces the status distribution
func WithStatusWeights(c *Categorical[models.Status]) Option {
	return func(s *Synthesizer) { s.statuses = c }
}

// WithPaymentWeights replaces the payment method distribution
func WithPaymentWeights(c *Categorical[models.PaymentMethod]) Option {
	return func(s *Synthesizer) { s.payments = c }
}

// NewSynthesizer creates a synthesizer. The clock is read once here.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		prefix:   DefaultFlightPrefix,
		window:   DefaultWindow,
		statuses: MustCategorical(DefaultStatusWeights),
		payments: MustCategorical(DefaultPaymentWeights),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.window < 0 {
		s.window = 0
	}
	if s.now.IsZero() {
		s.now = time.Now()
	}
	s.now = s.now.UTC().Truncate(time.Second)
	return s
}

// Synthesize builds one event. Draw order is status, payment method,
// reservation time, so a given rng state always yields the same event.
func (s *Synthesizer) Synthesize(seat models.SeatRecord, user models.UserRecord, rng *rand.Rand) models.OrderEvent {
	status := s.statuses.Draw(rng)
	payment := s.payments.Draw(rng)

	windowSecs := int64(s.window / time.Second)
	offset := time.Duration(rng.Int63n(windowSecs+1)) * time.Second

	return models.OrderEvent{
		FlightID:        s.prefix + strconv.FormatInt(seat.FlightID, 10),
		SeatCode:        seat.SeatCode,
		UserID:          strconv.FormatInt(user.UserID, 10),
		CustomerName:    user.DisplayName,
		Status:          status,
		PaymentMethod:   payment,
		ReservationTime: s.now.Add(-offset),
		Price:           models.Price(RoundPrice(seat.Price)),
	}
}

// RoundPrice rounds to cents, half to even
func RoundPrice(p float64) float64 {
	return math.RoundToEven(p*100) / 100
}
