package models

import "fmt"

// UserRecord represents one entry of the user directory
type UserRecord struct {
	UserID      int64  `db:"user_id" json:"user_id"`
	DisplayName string `db:"username" json:"username"`
}

// SeatRecord represents one seat of the flight inventory
type SeatRecord struct {
	FlightID int64   `db:"flight_id" json:"flight_id"`
	SeatCode string  `db:"seat" json:"seat"`
	Price    float64 `db:"price" json:"price"`
	Taken    bool    `db:"taken" json:"taken"`
}

// SeatKey is the composite identity of a seat
type SeatKey struct {
	FlightID int64
	SeatCode string
}

// Key returns the seat identity
func (s SeatRecord) Key() SeatKey {
	return SeatKey{FlightID: s.FlightID, SeatCode: s.SeatCode}
}

func (k SeatKey) String() string {
	return fmt.Sprintf("%d:%s", k.FlightID, k.SeatCode)
}
