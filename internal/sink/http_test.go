package sink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flight-loadgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleEvent = models.OrderEvent{
	FlightID:        "AAA-3",
	SeatCode:        "D14",
	UserID:          "77",
	CustomerName:    "maria",
	Status:          models.StatusConfirmed,
	PaymentMethod:   models.PaymentCreditCard,
	ReservationTime: time.Date(2024, 11, 5, 8, 15, 0, 0, time.UTC),
	Price:           1250,
}

func TestHTTPSinkSend(t *testing.T) {
	var got models.OrderEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message":"event accepted"}`))
	}))
	defer srv.Close()

	ack, err := NewHTTPSink(srv.URL, time.Second).Send(context.Background(), sampleEvent)
	require.NoError(t, err)
	assert.Equal(t, "event accepted", ack.Message)
	assert.Equal(t, sampleEvent, got)
}

func TestHTTPSinkStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "seat already taken", http.StatusConflict)
	}))
	defer srv.Close()

	_, err := NewHTTPSink(srv.URL, time.Second).Send(context.Background(), sampleEvent)

	var rce *RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, http.StatusConflict, rce.StatusCode)
	assert.Contains(t, err.Error(), "seat already taken")
}

func TestHTTPSinkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSink(url, time.Second).Send(context.Background(), sampleEvent)

	var rce *RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "http", rce.Sink)
	assert.Zero(t, rce.StatusCode)
}

func TestHTTPSinkHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPSink(srv.URL, 0).Send(ctx, sampleEvent)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
