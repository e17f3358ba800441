package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"xubot/events"
	"xubot/models"

	log "github.com/sirupsen/logrus"
)

type walletService struct {
	ledger   LedgerStore
	eventBus EventPublisher

	// one mutex per user so concurrent rounds against the same account
	// cannot interleave their read-modify-write of the balance
	locks sync.Map // user id -> *sync.Mutex
}

// NewWalletService creates a new wallet service
func NewWalletService(ledger LedgerStore, eventBus EventPublisher) WalletService {
	return &walletService{
		ledger:   ledger,
		eventBus: eventBus,
	}
}

func (s *walletService) lockFor(userID int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// GetBalance returns a user's balance, creating the account if needed
func (s *walletService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	account, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// AddBalance credits a positive amount and returns the new balance
func (s *walletService) AddBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.applyDelta(ctx, userID, amount, txType)
}

// SubtractBalance debits up to amount, clamping the balance at zero. The
// second return value is the amount actually applied; when it is less than
// the requested amount the account has been emptied. Clamping instead of
// rejecting is a documented policy the game resolvers rely on.
func (s *walletService) SubtractBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("amount must be positive")
	}

	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	applied := amount
	if applied > account.Balance {
		log.WithFields(log.Fields{
			"userID":    userID,
			"balance":   account.Balance,
			"requested": amount,
		}).Warn("Subtract exceeds balance, clamping to zero")
		applied = account.Balance
	}

	newBalance, err := s.applyDelta(ctx, userID, -applied, txType)
	if err != nil {
		return 0, 0, err
	}
	return newBalance, applied, nil
}

// SetBalance overwrites a user's balance (admin tools only)
func (s *walletService) SetBalance(ctx context.Context, userID int64, amount int64, txType models.TransactionType) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}

	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.ledger.Set(ctx, userID, amount); err != nil {
		return 0, fmt.Errorf("failed to set balance: %w", err)
	}

	s.eventBus.Emit(ctx, events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      account.Balance,
		NewBalance:      amount,
		TransactionType: txType,
		ChangeAmount:    amount - account.Balance,
	})
	return amount, nil
}

// HasSufficientBalance reports whether a user can cover amount
func (s *walletService) HasSufficientBalance(ctx context.Context, userID int64, amount int64) (bool, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Transfer atomically moves amount between users. Unlike stake settlement
// this fails outright on insufficient funds; nothing is clamped.
func (s *walletService) Transfer(ctx context.Context, fromID, toID int64, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromID == toID {
		return nil, fmt.Errorf("cannot transfer to yourself")
	}

	// Lock both accounts in a fixed order to avoid deadlock
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	firstMu, secondMu := s.lockFor(first), s.lockFor(second)
	firstMu.Lock()
	defer firstMu.Unlock()
	secondMu.Lock()
	defer secondMu.Unlock()

	fromAccount, err := s.getOrCreate(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender account: %w", err)
	}
	if fromAccount.Balance < amount {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, fromAccount.Balance, amount)
	}

	toAccount, err := s.getOrCreate(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient account: %w", err)
	}

	newFromBalance := fromAccount.Balance - amount
	newToBalance := toAccount.Balance + amount

	if pair, ok := s.ledger.(PairSetter); ok {
		if err := pair.SetPair(ctx, fromID, newFromBalance, toID, newToBalance); err != nil {
			return nil, fmt.Errorf("failed to apply transfer: %w", err)
		}
	} else {
		if err := s.ledger.Set(ctx, fromID, newFromBalance); err != nil {
			return nil, fmt.Errorf("failed to debit sender: %w", err)
		}
		if err := s.ledger.Set(ctx, toID, newToBalance); err != nil {
			// Restore the sender so the pair stays consistent
			if restoreErr := s.ledger.Set(ctx, fromID, fromAccount.Balance); restoreErr != nil {
				log.WithError(restoreErr).WithField("userID", fromID).Error("Failed to restore sender balance after transfer failure")
			}
			return nil, fmt.Errorf("failed to credit recipient: %w", err)
		}
	}

	s.eventBus.Emit(ctx, events.BalanceChangeEvent{
		UserID:          fromID,
		OldBalance:      fromAccount.Balance,
		NewBalance:      newFromBalance,
		TransactionType: models.TransactionTypeTransferOut,
		ChangeAmount:    -amount,
	})
	s.eventBus.Emit(ctx, events.BalanceChangeEvent{
		UserID:          toID,
		OldBalance:      toAccount.Balance,
		NewBalance:      newToBalance,
		TransactionType: models.TransactionTypeTransferIn,
		ChangeAmount:    amount,
	})

	return &models.TransferResult{
		Amount:      amount,
		RecipientID: toID,
		NewBalance:  newFromBalance,
	}, nil
}

// ParseBetAmount resolves a raw stake string against the user's balance.
// Accepted forms: "all", plain integers with optional comma/period grouping,
// and k/m suffixes ("25k" = 25000). A stake above the balance is capped to
// the balance and reported via adjusted/note; bets are never rejected for
// being too large.
func (s *walletService) ParseBetAmount(ctx context.Context, userID int64, raw string) (int64, bool, string, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return 0, false, "", err
	}

	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "all" {
		if balance <= 0 {
			return 0, false, "", fmt.Errorf("%w: you have no xu to go all-in", ErrInvalidStake)
		}
		return balance, false, "", nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(text, "k"):
		multiplier = 1_000
		text = strings.TrimSuffix(text, "k")
	case strings.HasSuffix(text, "m"):
		multiplier = 1_000_000
		text = strings.TrimSuffix(text, "m")
	}

	// Grouping characters only; "1.000" is a thousand, not a decimal
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, ".", "")

	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false, "", fmt.Errorf("%w: %q is not a number", ErrInvalidStake, raw)
	}
	amount *= multiplier
	if amount <= 0 {
		return 0, false, "", fmt.Errorf("%w: stake must be positive", ErrInvalidStake)
	}

	if amount > balance {
		if balance <= 0 {
			return 0, false, "", fmt.Errorf("%w: you have no xu to bet", ErrInvalidStake)
		}
		note := fmt.Sprintf("Stake lowered from %d to your balance of %d xu", amount, balance)
		return balance, true, note, nil
	}

	return amount, false, "", nil
}

// getOrCreate reads the account and announces lazily created ones
func (s *walletService) getOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	account, created, err := s.ledger.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}
	if created {
		s.eventBus.Emit(ctx, events.AccountCreatedEvent{
			UserID:         userID,
			InitialBalance: account.Balance,
		})
		s.eventBus.Emit(ctx, events.BalanceChangeEvent{
			UserID:          userID,
			OldBalance:      0,
			NewBalance:      account.Balance,
			TransactionType: models.TransactionTypeInitial,
			ChangeAmount:    account.Balance,
		})
	}
	return account, nil
}

// applyDelta re-reads the balance and writes it back. Callers must hold the
// user's mutex.
func (s *walletService) applyDelta(ctx context.Context, userID int64, delta int64, txType models.TransactionType) (int64, error) {
	account, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}

	newBalance := account.Balance + delta
	if newBalance < 0 {
		newBalance = 0
	}
	if err := s.ledger.Set(ctx, userID, newBalance); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	s.eventBus.Emit(ctx, events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      account.Balance,
		NewBalance:      newBalance,
		TransactionType: txType,
		ChangeAmount:    newBalance - account.Balance,
	})
	return newBalance, nil
}
