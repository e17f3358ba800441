package service

import "errors"

// Sentinel errors for adverse conditions callers are expected to branch on.
// Balance-mutating operations never return these for stake settlement: stakes
// are clamped or capped instead of rejected (see WalletService).
var (
	// ErrInvalidStake indicates a non-numeric or non-positive stake string.
	ErrInvalidStake = errors.New("invalid stake")

	// ErrInsufficientFunds is returned by Transfer only; game stakes auto-cap.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateBiasRecord indicates the target is already marked unlucky.
	ErrDuplicateBiasRecord = errors.New("user is already unlucky")

	// ErrMissingBiasRecord indicates a removal for a user with no bias record.
	ErrMissingBiasRecord = errors.New("user has no bias record")
)
