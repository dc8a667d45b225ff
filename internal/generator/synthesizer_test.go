package generator

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
	"time"

	"flight-loadgen/internal/models"
	"flight-loadgen/internal/refdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)

func TestSynthesizeFields(t *testing.T) {
	synth := NewSynthesizer(WithClock(fixedNow))
	seat := models.SeatRecord{FlightID: 17, SeatCode: "C12", Price: 1234.5678}
	user := models.UserRecord{UserID: 42, DisplayName: "jdoe"}

	ev := synth.Synthesize(seat, user, rand.New(rand.NewSource(1)))

	assert.Equal(t, "AAA-17", ev.FlightID)
	assert.Equal(t, "C12", ev.SeatCode)
	assert.Equal(t, "42", ev.UserID)
	assert.Equal(t, "jdoe", ev.CustomerName)
	assert.True(t, ev.Status.Valid())
	assert.True(t, ev.PaymentMethod.Valid())
	assert.Equal(t, models.Price(1234.57), ev.Price)
}

func TestSynthesizeReservationWindow(t *testing.T) {
	synth := NewSynthesizer(WithClock(fixedNow))
	rng := rand.New(rand.NewSource(9))
	end := fixedNow.Truncate(time.Second)
	start := end.Add(-DefaultWindow)

	for i := 0; i < 5000; i++ {
		ev := synth.Synthesize(models.SeatRecord{FlightID: 1, SeatCode: "A1"}, models.UserRecord{UserID: 1}, rng)
		ts := ev.ReservationTime
		assert.False(t, ts.Before(start), "%v before window", ts)
		assert.False(t, ts.After(end), "%v after window", ts)
		assert.Equal(t, ts, ts.Truncate(time.Second))
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	synth := NewSynthesizer(WithClock(fixedNow))
	seat := models.SeatRecord{FlightID: 3, SeatCode: "B4", Price: 99.995}
	user := models.UserRecord{UserID: 8, DisplayName: "x"}

	encode := func(seed int64) []byte {
		rng := rand.New(rand.NewSource(seed))
		var events []models.OrderEvent
		for i := 0; i < 50; i++ {
			events = append(events, synth.Synthesize(seat, user, rng))
		}
		b, err := json.Marshal(events)
		require.NoError(t, err)
		return b
	}

	assert.Equal(t, encode(42), encode(42))
	assert.NotEqual(t, encode(42), encode(7))
}

func TestSynthesizePriceInvariant(t *testing.T) {
	synth := NewSynthesizer(WithClock(fixedNow))
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 2000; i++ {
		seat := models.SeatRecord{FlightID: 1, SeatCode: "A1", Price: rng.Float64() * 15000}
		ev := synth.Synthesize(seat, models.UserRecord{UserID: 1}, rng)

		assert.Equal(t, RoundPrice(seat.Price), float64(ev.Price))
		assert.GreaterOrEqual(t, float64(ev.Price), 0.0)

		s := ev.Price.String()
		dot := strings.IndexByte(s, '.')
		require.NotEqual(t, -1, dot)
		assert.Len(t, s[dot+1:], 2)
	}
}

func TestRoundPriceHalfEven(t *testing.T) {
	assert.Equal(t, 0.12, RoundPrice(0.125))
	assert.Equal(t, 0.38, RoundPrice(0.375))
	assert.Equal(t, 750.0, RoundPrice(750))
}

func TestOrderEventJSON(t *testing.T) {
	ev := models.OrderEvent{
		FlightID:        "AAA-1",
		SeatCode:        "A1",
		UserID:          "5",
		CustomerName:    "ana",
		Status:          models.StatusConfirmed,
		PaymentMethod:   models.PaymentPix,
		ReservationTime: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		Price:           750,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"flight_id": "AAA-1",
		"seat": "A1",
		"user_id": "5",
		"customer_name": "ana",
		"status": "confirmed",
		"payment_method": "pix",
		"reservation_time": "2024-03-02T10:00:00Z",
		"price": 750.00
	}`, string(b))
	assert.Contains(t, string(b), `"price":750.00`)
}

func TestGenerateOrders(t *testing.T) {
	ds := &refdata.Dataset{
		Users: map[int64]models.UserRecord{
			1: {UserID: 1, DisplayName: "a"},
			2: {UserID: 2, DisplayName: "b"},
		},
		UserIDs: []int64{1, 2},
		Seats:   makeInventory(5, 20),
	}
	synth := NewSynthesizer(WithClock(fixedNow))

	orders, err := GenerateOrders(ds, 60, synth, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.Len(t, orders, 60)

	seen := make(map[string]bool)
	for _, o := range orders {
		key := o.FlightID + "/" + o.SeatCode
		assert.False(t, seen[key])
		seen[key] = true
		assert.Contains(t, []string{"1", "2"}, o.UserID)
	}

	again, err := GenerateOrders(ds, 60, synth, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, orders, again)

	_, err = GenerateOrders(ds, 1000, synth, rand.New(rand.NewSource(42)))
	var ie *InsufficientInventoryError
	assert.ErrorAs(t, err, &ie)
}

func TestSynthesizerOptions(t *testing.T) {
	synth := NewSynthesizer(
		WithClock(fixedNow),
		WithFlightPrefix("ZZ-"),
		WithWindow(time.Hour),
		WithStatusWeights(MustCategorical([]Weight[models.Status]{{Value: models.StatusCancelled, Weight: 1}})),
		WithPaymentWeights(MustCategorical([]Weight[models.PaymentMethod]{{Value: models.PaymentPix, Weight: 1}})),
	)
	seat := models.SeatRecord{FlightID: 5, SeatCode: "A1", Price: 10}
	user := models.UserRecord{UserID: 1, DisplayName: "x"}
	rng := rand.New(rand.NewSource(3))
	now := fixedNow.Truncate(time.Second)

	for i := 0; i < 1000; i++ {
		ev := synth.Synthesize(seat, user, rng)
		assert.Equal(t, "ZZ-5", ev.FlightID)
		assert.Equal(t, models.StatusCancelled, ev.Status)
		assert.Equal(t, models.PaymentPix, ev.PaymentMethod)
		assert.False(t, ev.ReservationTime.After(now))
		assert.False(t, ev.ReservationTime.Before(now.Add(-time.Hour)))
	}
}

func TestSynthesizerNegativeWindow(t *testing.T) {
	synth := NewSynthesizer(WithClock(fixedNow), WithWindow(-time.Hour))
	seat := models.SeatRecord{FlightID: 5, SeatCode: "A1", Price: 10}
	user := models.UserRecord{UserID: 1, DisplayName: "x"}

	ev := synth.Synthesize(seat, user, rand.New(rand.NewSource(1)))
	assert.Equal(t, fixedNow.Truncate(time.Second), ev.ReservationTime)
}
