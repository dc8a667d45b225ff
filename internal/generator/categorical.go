package generator

import (
	"fmt"
	"math/rand"
	"sort"

	"flight-loadgen/internal/models"
)

// Weight pairs a category with its relative probability
type Weight[T any] struct {
	Value  T
	Weight float64
}

// DefaultStatusWeights is the reservation status distribution
var DefaultStatusWeights = []Weight[models.Status]{
	{models.StatusPending, 0.05},
	{models.StatusConfirmed, 0.90},
	{models.StatusCancelled, 0.05},
}

// DefaultPaymentWeights is the payment method distribution
var DefaultPaymentWeights = []Weight[models.PaymentMethod]{
	{models.PaymentCreditCard, 0.46},
	{models.PaymentDebitCard, 0.34},
	{models.PaymentPix, 0.17},
	{models.PaymentPaypal, 0.03},
}

// Categorical draws values by inverting the cumulative weight table with a
// single uniform draw. Weights are normalized, so they need not sum to 1.
type Categorical[T any] struct {
	values []T
	cum    []float64
}

// NewCategorical builds the cumulative table
func NewCategorical[T any](weights []Weight[T]) (*Categorical[T], error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("categorical: no categories")
	}

	var total float64
	for _, w := range weights {
		if w.Weight < 0 {
			return nil, fmt.Errorf("categorical: negative weight %v for %v", w.Weight, w.Value)
		}
		total += w.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("categorical: weights sum to zero")
	}

	c := &Categorical[T]{
		values: make([]T, len(weights)),
		cum:    make([]float64, len(weights)),
	}
	var acc float64
	for i, w := range weights {
		acc += w.Weight
		c.values[i] = w.Value
		c.cum[i] = acc / total
	}
	c.cum[len(c.cum)-1] = 1

	return c, nil
}

// MustCategorical is NewCategorical for static tables
func MustCategorical[T any](weights []Weight[T]) *Categorical[T] {
	c, err := NewCategorical(weights)
	if err != nil {
		panic(err)
	}
	return c
}

// Draw returns one value using one rng.Float64 call
func (c *Categorical[T]) Draw(rng *rand.Rand) T {
	return c.Pick(rng.Float64())
}

// Pick maps u in [0, 1) to its category
func (c *Categorical[T]) Pick(u float64) T {
	i := sort.Search(len(c.cum), func(i int) bool { return u < c.cum[i] })
	if i == len(c.cum) {
		i--
	}
	return c.values[i]
}
