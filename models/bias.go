package models

import "time"

// BiasState represents the bias override applied to a user
type BiasState string

const (
	BiasStateNone    BiasState = "none"
	BiasStateUnlucky BiasState = "unlucky"
)

// BiasRecord represents an admin-imposed win/loss override for a user.
// Records are permanent until explicitly removed; there is no expiry.
type BiasRecord struct {
	UserID        int64     `json:"-" db:"user_id"`
	State         BiasState `json:"state" db:"state"`
	SetBy         int64     `json:"admin_id" db:"set_by"`
	SetAt         time.Time `json:"start_time" db:"set_at"`
	Reason        string    `json:"reason" db:"reason"`
	GamesAffected int64     `json:"games_affected" db:"games_affected"`
}
