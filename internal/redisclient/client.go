package redisclient

import (
	"context"
	"fmt"
	"time"

	"flight-loadgen/internal/models"

	"github.com/go-redis/redis/v8"
)

const ledgerBatch = 5000

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks connectivity
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ledger returns the seat allocation ledger stored under key
func (c *Client) Ledger(key string) *Ledger {
	return &Ledger{rdb: c.rdb, key: key}
}

// Ledger records seats handed out by earlier runs in a Redis set so that
// later runs can treat them as taken. Check and claim are separate
// commands: two runs starting at the same instant can still pick the
// same seat.
type Ledger struct {
	rdb redis.Cmdable
	key string
}

// SeatMember is the set member for a seat
func SeatMember(seat models.SeatRecord) string {
	return seat.Key().String()
}

// ExcludeClaimed returns a copy of inventory where every seat present in
// the ledger is marked taken
func (l *Ledger) ExcludeClaimed(ctx context.Context, inventory []models.SeatRecord) ([]models.SeatRecord, error) {
	out := make([]models.SeatRecord, len(inventory))
	copy(out, inventory)

	for start := 0; start < len(out); start += ledgerBatch {
		end := start + ledgerBatch
		if end > len(out) {
			end = len(out)
		}

		members := make([]interface{}, 0, end-start)
		for _, s := range out[start:end] {
			members = append(members, SeatMember(s))
		}

		claimed, err := l.rdb.SMIsMember(ctx, l.key, members...).Result()
		if err != nil {
			return nil, fmt.Errorf("ledger lookup failed: %w", err)
		}
		for i, taken := range claimed {
			if taken {
				out[start+i].Taken = true
			}
		}
	}
	return out, nil
}

// Claim adds seats to the ledger
func (l *Ledger) Claim(ctx context.Context, seats []models.SeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	members := make([]interface{}, len(seats))
	for i, s := range seats {
		members[i] = SeatMember(s)
	}
	if err := l.rdb.SAdd(ctx, l.key, members...).Err(); err != nil {
		return fmt.Errorf("ledger claim failed: %w", err)
	}
	return nil
}

// Reset drops every claim
func (l *Ledger) Reset(ctx context.Context) error {
	return l.rdb.Del(ctx, l.key).Err()
}
