package refdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"flight-loadgen/internal/models"
)

// CSVSource reads users.csv and flights_seats.csv as produced by the
// flight and user generators
type CSVSource struct {
	UsersPath string
	SeatsPath string
}

// LoadUsers reads user_id and username columns
func (s CSVSource) LoadUsers(ctx context.Context) ([]models.UserRecord, error) {
	var users []models.UserRecord
	err := readCSV(ctx, s.UsersPath, []string{"user_id", "username"}, func(row []string, col map[string]int) error {
		id, err := strconv.ParseInt(strings.TrimSpace(row[col["user_id"]]), 10, 64)
		if err != nil {
			return fmt.Errorf("user_id: %w", err)
		}
		users = append(users, models.UserRecord{
			UserID:      id,
			DisplayName: row[col["username"]],
		})
		return nil
	})
	if err != nil {
		return nil, &DataLoadError{Source: s.UsersPath, Err: err}
	}
	return users, nil
}

// LoadSeats reads flight_id, seat, price and taken columns
func (s CSVSource) LoadSeats(ctx context.Context) ([]models.SeatRecord, error) {
	var seats []models.SeatRecord
	err := readCSV(ctx, s.SeatsPath, []string{"flight_id", "seat", "price", "taken"}, func(row []string, col map[string]int) error {
		flightID, err := strconv.ParseInt(strings.TrimSpace(row[col["flight_id"]]), 10, 64)
		if err != nil {
			return fmt.Errorf("flight_id: %w", err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[col["price"]]), 64)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		if err := checkPrice(price); err != nil {
			return err
		}
		taken, err := parseTaken(row[col["taken"]])
		if err != nil {
			return err
		}
		seats = append(seats, models.SeatRecord{
			FlightID: flightID,
			SeatCode: row[col["seat"]],
			Price:    price,
			Taken:    taken,
		})
		return nil
	})
	if err != nil {
		return nil, &DataLoadError{Source: s.SeatsPath, Err: err}
	}
	return seats, nil
}

func parseTaken(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "":
		return false, nil
	case "1", "true":
		return true, nil
	}
	return false, fmt.Errorf("taken: invalid value %q", v)
}

func readCSV(ctx context.Context, path string, required []string, fn func(row []string, col map[string]int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("empty file")
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return fmt.Errorf("missing required column %q", name)
		}
	}

	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := fn(row, col); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
