package service

import (
	"context"

	"xubot/events"
	"xubot/models"
)

// LedgerStore defines the interface for durable balance storage. The whole
// ledger is held in memory and persisted write-through after every mutation.
type LedgerStore interface {
	// Get returns the account for a user, lazily creating it with the
	// starting balance. The second return reports whether it was created.
	Get(ctx context.Context, userID int64) (*models.Account, bool, error)

	// Set overwrites a user's balance and persists synchronously.
	// The amount must be >= 0 by caller contract; the store does not clamp.
	Set(ctx context.Context, userID int64, amount int64) error

	// All returns a snapshot of every account
	All(ctx context.Context) ([]*models.Account, error)

	// Reload re-reads the backing store, discarding in-memory state
	Reload(ctx context.Context) error
}

// PairSetter is an optional LedgerStore capability: atomically write two
// balances in one durable operation. The Postgres store implements it with a
// transaction; stores without it fall back to sequential writes with a
// best-effort restore.
type PairSetter interface {
	SetPair(ctx context.Context, firstID, firstAmount, secondID, secondAmount int64) error
}

// BiasStore defines the interface for bias record storage
type BiasStore interface {
	// Get returns the bias record for a user, or nil if none exists
	Get(ctx context.Context, userID int64) (*models.BiasRecord, error)

	// Put stores a bias record for record.UserID
	Put(ctx context.Context, record *models.BiasRecord) error

	// Remove deletes a user's bias record, reporting whether one existed
	Remove(ctx context.Context, userID int64) (bool, error)

	// IncrementGamesAffected bumps the audit counter on a user's record
	IncrementGamesAffected(ctx context.Context, userID int64) error

	// All returns a snapshot of every bias record
	All(ctx context.Context) ([]*models.BiasRecord, error)

	// Reload re-reads the backing store, discarding in-memory state
	Reload(ctx context.Context) error
}

// WalletService is the only component permitted to apply balance deltas. All
// mutating operations are serialized per user.
type WalletService interface {
	// GetBalance returns a user's balance, creating the account if needed
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// AddBalance credits a positive amount and returns the new balance
	AddBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, error)

	// SubtractBalance debits up to amount, clamping the balance at zero.
	// Returns the new balance and the amount actually applied.
	SubtractBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (newBalance int64, applied int64, err error)

	// SetBalance overwrites a user's balance (admin tools only)
	SetBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, error)

	// HasSufficientBalance reports whether a user can cover amount
	HasSufficientBalance(ctx context.Context, userID int64, amount int64) (bool, error)

	// Transfer atomically moves amount between users, failing with
	// ErrInsufficientFunds when the sender cannot cover it
	Transfer(ctx context.Context, fromID, toID int64, amount int64) (*models.TransferResult, error)

	// ParseBetAmount resolves a raw stake string ("all", "2k", "1,000", ...)
	// against the user's balance. Oversized stakes are capped to the balance
	// with adjusted=true and an explanatory note, never rejected.
	ParseBetAmount(ctx context.Context, userID int64, raw string) (amount int64, adjusted bool, note string, err error)
}

// BiasPolicy supplies the win/loss bias decision games consult before drawing
type BiasPolicy interface {
	// IsUnlucky reports whether an active unlucky record exists for the user
	IsUnlucky(ctx context.Context, userID int64) (bool, error)

	// EffectiveWinProbability returns the bias-adjusted win probability:
	// exactly 0 under an unlucky record, otherwise the balance-tier curve
	// applied to base, bounded to [0, 1]
	EffectiveWinProbability(ctx context.Context, userID int64, base float64) (float64, error)

	// AddUnlucky creates a permanent unlucky record for the target.
	// Returns ErrDuplicateBiasRecord if one already exists.
	AddUnlucky(ctx context.Context, adminID, targetID int64, reason string) error

	// RemoveUnlucky removes the target's record.
	// Returns ErrMissingBiasRecord if none exists.
	RemoveUnlucky(ctx context.Context, targetID int64) error

	// MarkGameAffected records that a round's outcome was forced by bias
	MarkGameAffected(ctx context.Context, userID int64) error
}

// GameResolver resolves one round of any mini-game against the shared wallet
type GameResolver interface {
	Resolve(ctx context.Context, req models.BetRequest) (*models.BetOutcome, error)
}

// AdminService defines bulk wallet operations exposed to the admin menu.
// Authorization is the command layer's job; none is performed here.
type AdminService interface {
	// ResetUserMoney zeroes a single user's balance
	ResetUserMoney(ctx context.Context, userID int64) error

	// ResetAllBalances zeroes every account, returning how many held xu
	ResetAllBalances(ctx context.Context) (*models.ResetResult, error)

	// Grant credits amount to a user directly
	Grant(ctx context.Context, adminID, userID int64, amount int64) (int64, error)

	// Reload discards in-memory ledger and bias state after external mutation
	Reload(ctx context.Context) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}
