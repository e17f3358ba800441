package service

import (
	"context"
	"path/filepath"
	"testing"

	"xubot/models"
	"xubot/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(t *testing.T) (AdminService, WalletService) {
	t.Helper()
	dir := t.TempDir()
	ledger, err := repository.NewFileLedgerStore(filepath.Join(dir, "ledger.json"), 0)
	require.NoError(t, err)
	bias, err := repository.NewFileBiasStore(filepath.Join(dir, "bias.json"))
	require.NoError(t, err)
	wallet := NewWalletService(ledger, nopPublisher{})
	return NewAdminService(ledger, bias, wallet), wallet
}

func TestAdminService_Grant(t *testing.T) {
	ctx := context.Background()
	admin, wallet := newTestAdmin(t)

	newBalance, err := admin.Grant(ctx, 999, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), newBalance)

	balance, err := wallet.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	_, err = admin.Grant(ctx, 999, 1, 0)
	assert.Error(t, err)
	_, err = admin.Grant(ctx, 999, 1, -10)
	assert.Error(t, err)
}

func TestAdminService_ResetUserMoney(t *testing.T) {
	ctx := context.Background()
	admin, wallet := newTestAdmin(t)

	_, err := wallet.AddBalance(ctx, 1, 500, models.TransactionTypeAdminGrant)
	require.NoError(t, err)

	require.NoError(t, admin.ResetUserMoney(ctx, 1))

	balance, err := wallet.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestAdminService_ResetAllBalances(t *testing.T) {
	ctx := context.Background()
	admin, wallet := newTestAdmin(t)

	// Three accounts, only two holding xu
	_, err := wallet.AddBalance(ctx, 1, 10, models.TransactionTypeAdminGrant)
	require.NoError(t, err)
	_, err = wallet.GetBalance(ctx, 2)
	require.NoError(t, err)
	_, err = wallet.AddBalance(ctx, 3, 500, models.TransactionTypeAdminGrant)
	require.NoError(t, err)

	result, err := admin.ResetAllBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.AccountsReset)

	for _, userID := range []int64{1, 2, 3} {
		balance, err := wallet.GetBalance(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	}
}

func TestAdminService_Reload(t *testing.T) {
	ctx := context.Background()
	admin, _ := newTestAdmin(t)

	assert.NoError(t, admin.Reload(ctx))
}
