package main

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"flight-loadgen/config"
	"flight-loadgen/internal/generator"
	"flight-loadgen/internal/models"
	"flight-loadgen/internal/refdata"
	"flight-loadgen/internal/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	rc := config.RunConfig{NumClients: 1, EventsPerClient: 5}
	require.NoError(t, parseArgs(nil, &rc))
	assert.Equal(t, 1, rc.NumClients)
	assert.Equal(t, 5, rc.EventsPerClient)

	require.NoError(t, parseArgs([]string{"8", "20"}, &rc))
	assert.Equal(t, 8, rc.NumClients)
	assert.Equal(t, 20, rc.EventsPerClient)

	assert.Error(t, parseArgs([]string{"0"}, &rc))
	assert.Error(t, parseArgs([]string{"2", "x"}, &rc))
	assert.Error(t, parseArgs([]string{"1", "2", "3"}, &rc))
}

func TestDescribe(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", &generator.InsufficientInventoryError{Requested: 5, Available: 2})
	assert.Equal(t, "Not enough free seats for this run", describe(wrapped))
	assert.Equal(t, "Failed to load reference data", describe(&refdata.DataLoadError{Source: "users"}))
	assert.Equal(t, "Run produced no samples", describe(&results.EmptySampleSetError{}))
	assert.Equal(t, "Load test failed", describe(fmt.Errorf("other")))
}

func TestNewSynthesizerUsesRunConfig(t *testing.T) {
	synth := newSynthesizer(config.RunConfig{FlightPrefix: "XYZ-", ReservationWindow: time.Minute})

	ev := synth.Synthesize(models.SeatRecord{FlightID: 9, SeatCode: "C3", Price: 1},
		models.UserRecord{UserID: 1, DisplayName: "u"}, rand.New(rand.NewSource(1)))

	assert.Equal(t, "XYZ-9", ev.FlightID)
	assert.WithinDuration(t, time.Now(), ev.ReservationTime, 2*time.Minute)
}
