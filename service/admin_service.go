package service

import (
	"context"
	"fmt"

	"xubot/models"

	log "github.com/sirupsen/logrus"
)

// adminService implements the bulk wallet operations behind the admin menu.
// It performs no permission checks; the command layer gates access.
type adminService struct {
	ledger LedgerStore
	bias   BiasStore
	wallet WalletService
}

// NewAdminService creates a new admin service
func NewAdminService(ledger LedgerStore, bias BiasStore, wallet WalletService) AdminService {
	return &adminService{
		ledger: ledger,
		bias:   bias,
		wallet: wallet,
	}
}

// ResetUserMoney zeroes a single user's balance
func (s *adminService) ResetUserMoney(ctx context.Context, userID int64) error {
	if _, err := s.wallet.SetBalance(ctx, userID, 0, models.TransactionTypeAdminReset); err != nil {
		return fmt.Errorf("failed to reset user %d: %w", userID, err)
	}
	log.WithField("userID", userID).Info("User balance reset")
	return nil
}

// ResetAllBalances zeroes every account, returning how many held xu.
// Irreversible; the caller is responsible for its own confirmation step.
func (s *adminService) ResetAllBalances(ctx context.Context) (*models.ResetResult, error) {
	accounts, err := s.ledger.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	reset := 0
	for _, account := range accounts {
		if account.Balance == 0 {
			continue
		}
		if _, err := s.wallet.SetBalance(ctx, account.UserID, 0, models.TransactionTypeAdminReset); err != nil {
			return nil, fmt.Errorf("failed to reset user %d: %w", account.UserID, err)
		}
		reset++
	}

	log.WithField("accountsReset", reset).Info("All balances reset")
	return &models.ResetResult{AccountsReset: reset}, nil
}

// Grant credits amount to a user directly
func (s *adminService) Grant(ctx context.Context, adminID, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive")
	}

	newBalance, err := s.wallet.AddBalance(ctx, userID, amount, models.TransactionTypeAdminGrant)
	if err != nil {
		return 0, fmt.Errorf("failed to grant to user %d: %w", userID, err)
	}

	log.WithFields(log.Fields{
		"adminID": adminID,
		"userID":  userID,
		"amount":  amount,
	}).Info("Admin grant applied")
	return newBalance, nil
}

// Reload discards in-memory ledger and bias state after external mutation
func (s *adminService) Reload(ctx context.Context) error {
	if err := s.ledger.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload ledger: %w", err)
	}
	if err := s.bias.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload bias records: %w", err)
	}
	return nil
}
