package service

import (
	"context"
	"fmt"
	"time"

	"xubot/events"
	"xubot/models"

	log "github.com/sirupsen/logrus"
)

// BiasConfig holds the tuning knobs for the balance-tier curve. The exact
// numbers are policy, not contract; the invariants that matter are that the
// effective probability is monotone non-increasing in balance, bounded to
// [0, 1], and exactly 0 under an unlucky record.
type BiasConfig struct {
	// HighBalanceThreshold is the balance at which the penalty applies
	HighBalanceThreshold int64
	// HighBalancePenalty multiplies the base probability at or above the
	// threshold; must be in (0, 1]
	HighBalancePenalty float64
	// LowBalanceBoost is the maximum relative boost for an empty wallet,
	// decaying linearly to zero at the threshold
	LowBalanceBoost float64
}

// DefaultBiasConfig returns the stock tier curve
func DefaultBiasConfig() BiasConfig {
	return BiasConfig{
		HighBalanceThreshold: 600_000_000,
		HighBalancePenalty:   0.60,
		LowBalanceBoost:      0.10,
	}
}

type biasPolicy struct {
	store    BiasStore
	wallet   WalletService
	cfg      BiasConfig
	eventBus EventPublisher
}

// NewBiasPolicy creates a new bias policy
func NewBiasPolicy(store BiasStore, wallet WalletService, cfg BiasConfig, eventBus EventPublisher) BiasPolicy {
	return &biasPolicy{
		store:    store,
		wallet:   wallet,
		cfg:      cfg,
		eventBus: eventBus,
	}
}

// IsUnlucky reports whether an active unlucky record exists for the user
func (p *biasPolicy) IsUnlucky(ctx context.Context, userID int64) (bool, error) {
	record, err := p.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get bias record: %w", err)
	}
	return record != nil && record.State == models.BiasStateUnlucky, nil
}

// EffectiveWinProbability returns the bias-adjusted win probability for one
// round. An unlucky record overrides everything else to a deterministic loss.
func (p *biasPolicy) EffectiveWinProbability(ctx context.Context, userID int64, base float64) (float64, error) {
	unlucky, err := p.IsUnlucky(ctx, userID)
	if err != nil {
		return 0, err
	}
	if unlucky {
		return 0, nil
	}

	balance, err := p.wallet.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}

	var factor float64
	if balance >= p.cfg.HighBalanceThreshold {
		// High net worth: harder to win further
		factor = p.cfg.HighBalancePenalty
	} else {
		// Assistance for low-balance players, fading out at the threshold
		remaining := 1 - float64(balance)/float64(p.cfg.HighBalanceThreshold)
		factor = 1 + p.cfg.LowBalanceBoost*remaining
	}

	effective := base * factor
	if effective < 0 {
		effective = 0
	}
	if effective > 1 {
		effective = 1
	}
	return effective, nil
}

// AddUnlucky creates a permanent unlucky record for the target
func (p *biasPolicy) AddUnlucky(ctx context.Context, adminID, targetID int64, reason string) error {
	existing, err := p.store.Get(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to check bias record: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: user %d", ErrDuplicateBiasRecord, targetID)
	}

	record := &models.BiasRecord{
		UserID: targetID,
		State:  models.BiasStateUnlucky,
		SetBy:  adminID,
		SetAt:  time.Now().UTC(),
		Reason: reason,
	}
	if err := p.store.Put(ctx, record); err != nil {
		return fmt.Errorf("failed to store bias record: %w", err)
	}

	log.WithFields(log.Fields{
		"targetID": targetID,
		"adminID":  adminID,
		"reason":   reason,
	}).Info("User marked unlucky")

	p.eventBus.Emit(ctx, events.BiasChangedEvent{
		UserID:  targetID,
		AdminID: adminID,
		State:   models.BiasStateUnlucky,
		Added:   true,
	})
	return nil
}

// RemoveUnlucky removes the target's record
func (p *biasPolicy) RemoveUnlucky(ctx context.Context, targetID int64) error {
	removed, err := p.store.Remove(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove bias record: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: user %d", ErrMissingBiasRecord, targetID)
	}

	log.WithField("targetID", targetID).Info("Unlucky record removed")

	p.eventBus.Emit(ctx, events.BiasChangedEvent{
		UserID: targetID,
		State:  models.BiasStateNone,
		Added:  false,
	})
	return nil
}

// MarkGameAffected records that a round's outcome was forced by bias
func (p *biasPolicy) MarkGameAffected(ctx context.Context, userID int64) error {
	return p.store.IncrementGamesAffected(ctx, userID)
}
