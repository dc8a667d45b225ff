package store

import (
	"context"
	"fmt"
	"time"

	"flight-loadgen/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an existing connection
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// LoadUsers reads the user directory
func (s *Store) LoadUsers(ctx context.Context) ([]models.UserRecord, error) {
	var users []models.UserRecord
	err := s.db.SelectContext(ctx, &users, "SELECT user_id, username FROM users ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// LoadSeats reads the seat inventory
func (s *Store) LoadSeats(ctx context.Context) ([]models.SeatRecord, error) {
	var seats []models.SeatRecord
	err := s.db.SelectContext(ctx, &seats,
		"SELECT flight_id, seat, price, taken FROM flight_seats ORDER BY flight_id, seat")
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	return seats, nil
}
