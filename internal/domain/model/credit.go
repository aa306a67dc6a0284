package model

import "time"

// CreditEntry is one row in the append-only credits ledger. Negative deltas
// are spends, positive deltas are grants. Balance is the sum of deltas.
type CreditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Delta     int64     `json:"delta"` // micro-credits
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
