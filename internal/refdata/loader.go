// Package refdata loads the read-only user directory and seat inventory.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"flight-loadgen/internal/models"
)

// Source provides the raw reference rows
type Source interface {
	LoadUsers(ctx context.Context) ([]models.UserRecord, error)
	LoadSeats(ctx context.Context) ([]models.SeatRecord, error)
}

// DataLoadError reports unreadable or malformed reference data
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// Dataset is the in-memory reference data of a run. It is never modified
// after Load returns and may be read from any number of goroutines.
type Dataset struct {
	Users   map[int64]models.UserRecord
	UserIDs []int64
	Seats   []models.SeatRecord
}

// User returns the i-th user in ascending id order
func (d *Dataset) User(i int) models.UserRecord {
	return d.Users[d.UserIDs[i]]
}

// Available counts the untaken seats
func (d *Dataset) Available() int {
	n := 0
	for _, s := range d.Seats {
		if !s.Taken {
			n++
		}
	}
	return n
}

// Load reads both tables from src and indexes the users
func Load(ctx context.Context, src Source) (*Dataset, error) {
	users, err := src.LoadUsers(ctx)
	if err != nil {
		return nil, asLoadError("users", err)
	}
	if len(users) == 0 {
		return nil, &DataLoadError{Source: "users", Err: fmt.Errorf("no user rows")}
	}

	seats, err := src.LoadSeats(ctx)
	if err != nil {
		return nil, asLoadError("seats", err)
	}
	for _, seat := range seats {
		if err := checkPrice(seat.Price); err != nil {
			return nil, &DataLoadError{Source: "seats", Err: fmt.Errorf("seat %s: %w", seat.Key(), err)}
		}
	}

	ds := &Dataset{
		Users:   make(map[int64]models.UserRecord, len(users)),
		UserIDs: make([]int64, 0, len(users)),
		Seats:   seats,
	}
	for _, u := range users {
		if _, dup := ds.Users[u.UserID]; !dup {
			ds.UserIDs = append(ds.UserIDs, u.UserID)
		}
		ds.Users[u.UserID] = u
	}
	sort.Slice(ds.UserIDs, func(i, j int) bool { return ds.UserIDs[i] < ds.UserIDs[j] })

	return ds, nil
}

// checkPrice rejects prices no order may carry
func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("price: invalid value %v", price)
	}
	return nil
}

func asLoadError(source string, err error) error {
	var le *DataLoadError
	if errors.As(err, &le) {
		return le
	}
	return &DataLoadError{Source: source, Err: err}
}

// Memo loads a Source at most once for the lifetime of the process
type Memo struct {
	src  Source
	once sync.Once
	ds   *Dataset
	err  error
}

// NewMemo wraps src
func NewMemo(src Source) *Memo {
	return &Memo{src: src}
}

// Dataset returns the loaded data, loading it on first use
func (m *Memo) Dataset(ctx context.Context) (*Dataset, error) {
	m.once.Do(func() {
		m.ds, m.err = Load(ctx, m.src)
	})
	return m.ds, m.err
}
