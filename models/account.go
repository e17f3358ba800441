package models

import (
	"time"
)

// Account represents a Discord user's xu wallet
type Account struct {
	UserID      int64     `json:"-" db:"user_id"`
	Balance     int64     `json:"balance" db:"balance"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}
