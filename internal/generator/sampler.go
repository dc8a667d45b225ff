// Package generator builds synthetic reservation orders from a seat inventory.
package generator

import (
	"fmt"
	"math/rand"

	"flight-loadgen/internal/models"
)

// InsufficientInventoryError is returned when fewer seats are available
// than requested
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d seats, %d available", e.Requested, e.Available)
}

// Sample draws count distinct untaken seats uniformly without replacement.
// The inventory is not modified. Seats sharing an identity are counted once.
func Sample(inventory []models.SeatRecord, count int, rng *rand.Rand) ([]models.SeatRecord, error) {
	pool := make([]models.SeatRecord, 0, len(inventory))
	seen := make(map[models.SeatKey]struct{}, len(inventory))
	for _, s := range inventory {
		if s.Taken {
			continue
		}
		k := s.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		pool = append(pool, s)
	}

	if count < 0 || count > len(pool) {
		return nil, &InsufficientInventoryError{Requested: count, Available: len(pool)}
	}

	// partial Fisher-Yates: pool[:i] holds the picks so far
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	out := make([]models.SeatRecord, count)
	copy(out, pool[:count])
	return out, nil
}
