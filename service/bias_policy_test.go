package service

import (
	"context"
	"testing"

	"xubot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func unluckyRecord(userID int64) *models.BiasRecord {
	return &models.BiasRecord{
		UserID: userID,
		State:  models.BiasStateUnlucky,
		SetBy:  999,
	}
}

func TestBiasPolicy_UnluckyAlwaysLoses(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Get", ctx, int64(1)).Return(unluckyRecord(1), nil)

	for _, base := range []float64{0.01, 0.5, 1.0} {
		probability, err := policy.EffectiveWinProbability(ctx, 1, base)
		require.NoError(t, err)
		assert.Equal(t, 0.0, probability)
	}

	// The wallet is never consulted for an unlucky player
	mockWallet.AssertNotCalled(t, "GetBalance")
}

func TestBiasPolicy_LowBalanceBoost(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Get", ctx, int64(1)).Return(nil, nil)
	mockWallet.On("GetBalance", ctx, int64(1)).Return(int64(0), nil)

	// An empty wallet gets the full boost
	probability, err := policy.EffectiveWinProbability(ctx, 1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, probability, 1e-9)
}

func TestBiasPolicy_BoostFadesTowardThreshold(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultBiasConfig()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, cfg, nopPublisher{})

	mockStore.On("Get", ctx, int64(1)).Return(nil, nil)
	mockWallet.On("GetBalance", ctx, int64(1)).Return(cfg.HighBalanceThreshold/2, nil).Once()

	probability, err := policy.EffectiveWinProbability(ctx, 1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.525, probability, 1e-9)
}

func TestBiasPolicy_HighBalancePenalty(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultBiasConfig()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, cfg, nopPublisher{})

	mockStore.On("Get", ctx, int64(1)).Return(nil, nil)
	mockWallet.On("GetBalance", ctx, int64(1)).Return(cfg.HighBalanceThreshold, nil)

	probability, err := policy.EffectiveWinProbability(ctx, 1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, probability, 1e-9)
}

func TestBiasPolicy_MonotoneNonIncreasing(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultBiasConfig()
	mockStore := new(MockBiasStore)
	policy := func(balance int64) float64 {
		mockWallet := new(MockWalletService)
		mockWallet.On("GetBalance", ctx, int64(1)).Return(balance, nil)
		p := NewBiasPolicy(mockStore, mockWallet, cfg, nopPublisher{})
		probability, err := p.EffectiveWinProbability(ctx, 1, 0.5)
		require.NoError(t, err)
		return probability
	}
	mockStore.On("Get", ctx, int64(1)).Return(nil, nil)

	balances := []int64{0, 1000, 1_000_000, cfg.HighBalanceThreshold / 2, cfg.HighBalanceThreshold - 1, cfg.HighBalanceThreshold, cfg.HighBalanceThreshold * 2}
	previous := 1.1
	for _, balance := range balances {
		probability := policy(balance)
		assert.LessOrEqual(t, probability, previous, "balance %d", balance)
		assert.GreaterOrEqual(t, probability, 0.0)
		assert.LessOrEqual(t, probability, 1.0)
		previous = probability
	}
}

func TestBiasPolicy_ClampsToOne(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Get", ctx, int64(1)).Return(nil, nil)
	mockWallet.On("GetBalance", ctx, int64(1)).Return(int64(0), nil)

	probability, err := policy.EffectiveWinProbability(ctx, 1, 0.99)
	require.NoError(t, err)
	assert.LessOrEqual(t, probability, 1.0)
}

func TestBiasPolicy_AddUnlucky(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Get", ctx, int64(5)).Return(nil, nil)
	mockStore.On("Put", ctx, mock.MatchedBy(func(record *models.BiasRecord) bool {
		return record.UserID == 5 &&
			record.State == models.BiasStateUnlucky &&
			record.SetBy == 999 &&
			record.Reason == "talked back" &&
			!record.SetAt.IsZero()
	})).Return(nil)

	err := policy.AddUnlucky(ctx, 999, 5, "talked back")
	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestBiasPolicy_AddUnlucky_Duplicate(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Get", ctx, int64(5)).Return(unluckyRecord(5), nil)

	err := policy.AddUnlucky(ctx, 999, 5, "again")
	assert.ErrorIs(t, err, ErrDuplicateBiasRecord)
	mockStore.AssertNotCalled(t, "Put")
}

func TestBiasPolicy_RemoveUnlucky(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Remove", ctx, int64(5)).Return(true, nil)

	err := policy.RemoveUnlucky(ctx, 5)
	require.NoError(t, err)
}

func TestBiasPolicy_RemoveUnlucky_Missing(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockBiasStore)
	mockWallet := new(MockWalletService)
	policy := NewBiasPolicy(mockStore, mockWallet, DefaultBiasConfig(), nopPublisher{})

	mockStore.On("Remove", ctx, int64(5)).Return(false, nil)

	err := policy.RemoveUnlucky(ctx, 5)
	assert.ErrorIs(t, err, ErrMissingBiasRecord)
}
