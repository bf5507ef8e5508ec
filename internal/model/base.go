package model

import "time"

// Timestamps is embedded by mutable aggregates. Append-only tables (logs,
// inventory transactions) carry only CreatedAt.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
