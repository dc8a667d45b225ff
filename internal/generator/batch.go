package generator

import (
	"math/rand"

	"flight-loadgen/internal/models"
	"flight-loadgen/internal/refdata"
)

// GenerateOrders samples count distinct seats and synthesizes one order
// for each, picking the customer uniformly from the user directory
func GenerateOrders(ds *refdata.Dataset, count int, synth *Synthesizer, rng *rand.Rand) ([]models.OrderEvent, error) {
	seats, err := Sample(ds.Seats, count, rng)
	if err != nil {
		return nil, err
	}

	orders := make([]models.OrderEvent, 0, len(seats))
	for _, seat := range seats {
		user := ds.User(rng.Intn(len(ds.UserIDs)))
		orders = append(orders, synth.Synthesize(seat, user, rng))
	}
	return orders, nil
}
