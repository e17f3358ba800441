package service

import (
	"context"
	"strings"
	"testing"

	"xubot/events"
	"xubot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameResolver_WinningRound(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	publisher := &recordingPublisher{}
	resolver := newGameResolverWithDraw(mockWallet, mockBias, publisher, func() float64 { return 0.1 })

	mockWallet.On("ParseBetAmount", ctx, int64(1), "100").Return(int64(100), false, "", nil)
	mockBias.On("EffectiveWinProbability", ctx, int64(1), 0.5).Return(0.5, nil)
	mockWallet.On("AddBalance", ctx, int64(1), int64(100), models.TransactionTypeBetWin).Return(int64(1100), nil)

	outcome, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "100",
		Game:      models.GameCoinFlip,
		Choice:    "heads",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Won)
	assert.Equal(t, int64(100), outcome.Stake)
	assert.Equal(t, int64(100), outcome.PayoutDelta)
	assert.Equal(t, int64(1100), outcome.NewBalance)
	assert.Contains(t, outcome.Display, "heads")

	mockWallet.AssertExpectations(t)
	mockWallet.AssertNotCalled(t, "SubtractBalance")
}

func TestGameResolver_LosingRound(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.9 })

	mockWallet.On("ParseBetAmount", ctx, int64(1), "100").Return(int64(100), false, "", nil)
	mockBias.On("EffectiveWinProbability", ctx, int64(1), 0.5).Return(0.5, nil)
	mockWallet.On("SubtractBalance", ctx, int64(1), int64(100), models.TransactionTypeBetLoss).Return(int64(900), int64(100), nil)

	outcome, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "100",
		Game:      models.GameCoinFlip,
		Choice:    "tails",
	})
	require.NoError(t, err)
	assert.False(t, outcome.Won)
	assert.Equal(t, int64(-100), outcome.PayoutDelta)
	assert.Equal(t, int64(900), outcome.NewBalance)
	assert.Contains(t, outcome.Display, "heads")

	mockWallet.AssertNotCalled(t, "AddBalance")
	mockBias.AssertNotCalled(t, "MarkGameAffected")
}

func TestGameResolver_UnluckyForcedLoss(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	// Even a draw of exactly 0 cannot beat probability 0
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.0 })

	mockWallet.On("ParseBetAmount", ctx, int64(1), "all").Return(int64(500), false, "", nil)
	mockBias.On("EffectiveWinProbability", ctx, int64(1), 0.5).Return(0.0, nil)
	mockWallet.On("SubtractBalance", ctx, int64(1), int64(500), models.TransactionTypeBetLoss).Return(int64(0), int64(500), nil)
	mockBias.On("IsUnlucky", ctx, int64(1)).Return(true, nil)
	mockBias.On("MarkGameAffected", ctx, int64(1)).Return(nil)

	outcome, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "all",
		Game:      models.GameCoinFlip,
		Choice:    "heads",
	})
	require.NoError(t, err)
	assert.False(t, outcome.Won)

	mockBias.AssertExpectations(t)
}

func TestGameResolver_StakeCappedToBalance(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.9 })

	// Player at 1000 asks for 5000; the stake is lowered, never rejected
	note := "Stake lowered from 5000 to your balance of 1000 xu"
	mockWallet.On("ParseBetAmount", ctx, int64(1), "5000").Return(int64(1000), true, note, nil)
	mockBias.On("EffectiveWinProbability", ctx, int64(1), 0.5).Return(0.5, nil)
	mockWallet.On("SubtractBalance", ctx, int64(1), int64(1000), models.TransactionTypeBetLoss).Return(int64(0), int64(1000), nil)

	outcome, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "5000",
		Game:      models.GameCoinFlip,
		Choice:    "heads",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), outcome.Stake)
	assert.Equal(t, int64(0), outcome.NewBalance)
	assert.Equal(t, note, outcome.AdjustNote)
}

func TestGameResolver_InvalidStakeLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.1 })

	mockWallet.On("ParseBetAmount", ctx, int64(1), "abc").Return(int64(0), false, "", ErrInvalidStake)

	_, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "abc",
		Game:      models.GameSlots,
	})
	assert.ErrorIs(t, err, ErrInvalidStake)

	mockWallet.AssertNotCalled(t, "AddBalance")
	mockWallet.AssertNotCalled(t, "SubtractBalance")
}

func TestGameResolver_InvalidChoice(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.1 })

	_, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "100",
		Game:      models.GameCoinFlip,
		Choice:    "banana",
	})
	assert.ErrorIs(t, err, ErrInvalidStake)
	mockWallet.AssertNotCalled(t, "ParseBetAmount")
}

func TestGameResolver_UnknownGame(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.1 })

	_, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "100",
		Game:      "roulette",
	})
	assert.Error(t, err)
}

func TestGameResolver_SlotsPaysDouble(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return 0.1 })

	mockWallet.On("ParseBetAmount", ctx, int64(1), "100").Return(int64(100), false, "", nil)
	mockBias.On("EffectiveWinProbability", ctx, int64(1), 0.30).Return(0.30, nil)
	mockWallet.On("AddBalance", ctx, int64(1), int64(200), models.TransactionTypeBetWin).Return(int64(1200), nil)

	outcome, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    1,
		StakeText: "100",
		Game:      models.GameSlots,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Won)
	assert.Equal(t, int64(200), outcome.PayoutDelta)

	mockWallet.AssertExpectations(t)
}

func TestGameResolver_EmitsBetResolvedEvent(t *testing.T) {
	ctx := context.Background()
	mockWallet := new(MockWalletService)
	mockBias := new(MockBiasPolicy)
	publisher := &recordingPublisher{}
	resolver := newGameResolverWithDraw(mockWallet, mockBias, publisher, func() float64 { return 0.1 })

	mockWallet.On("ParseBetAmount", ctx, int64(7), "100").Return(int64(100), false, "", nil)
	mockBias.On("EffectiveWinProbability", ctx, int64(7), 0.5).Return(0.5, nil)
	mockWallet.On("AddBalance", ctx, int64(7), int64(100), models.TransactionTypeBetWin).Return(int64(1100), nil)

	_, err := resolver.Resolve(ctx, models.BetRequest{
		UserID:    7,
		StakeText: "100",
		Game:      models.GameCoinFlip,
		Choice:    "heads",
	})
	require.NoError(t, err)

	emitted := publisher.Events()
	require.Len(t, emitted, 1)
	resolved, ok := emitted[0].(events.BetResolvedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), resolved.UserID)
	assert.Equal(t, models.GameCoinFlip, resolved.Game)
	assert.True(t, resolved.Won)
	assert.Equal(t, int64(100), resolved.PayoutDelta)
}

func TestGameParamsFor(t *testing.T) {
	for _, game := range []models.GameKind{
		models.GameCoinFlip,
		models.GameTaiXiu,
		models.GameSlots,
		models.GameBlackjack,
		models.GameRPS,
	} {
		params, ok := GameParamsFor(game)
		require.True(t, ok, "missing params for %s", game)
		assert.Greater(t, params.BaseWinProbability, 0.0)
		assert.LessOrEqual(t, params.BaseWinProbability, 1.0)
		assert.GreaterOrEqual(t, params.PayoutMultiplier, int64(1))
	}

	_, ok := GameParamsFor("roulette")
	assert.False(t, ok)
}

func TestGameResolver_TaiXiuDisplayMatchesOutcome(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		choice   string
		draw     float64
		wantSide string
	}{
		{choice: "tai", draw: 0.1, wantSide: "Tài"},
		{choice: "tai", draw: 0.9, wantSide: "Xỉu"},
		{choice: "xiu", draw: 0.1, wantSide: "Xỉu"},
		{choice: "xiu", draw: 0.9, wantSide: "Tài"},
	} {
		mockWallet := new(MockWalletService)
		mockBias := new(MockBiasPolicy)
		resolver := newGameResolverWithDraw(mockWallet, mockBias, nopPublisher{}, func() float64 { return tt.draw })

		mockWallet.On("ParseBetAmount", ctx, int64(1), "100").Return(int64(100), false, "", nil)
		mockBias.On("EffectiveWinProbability", ctx, int64(1), 0.4865).Return(0.4865, nil)
		mockWallet.On("AddBalance", ctx, int64(1), int64(100), models.TransactionTypeBetWin).Return(int64(1100), nil).Maybe()
		mockWallet.On("SubtractBalance", ctx, int64(1), int64(100), models.TransactionTypeBetLoss).Return(int64(900), int64(100), nil).Maybe()

		outcome, err := resolver.Resolve(ctx, models.BetRequest{
			UserID:    1,
			StakeText: "100",
			Game:      models.GameTaiXiu,
			Choice:    tt.choice,
		})
		require.NoError(t, err)
		assert.True(t, strings.Contains(outcome.Display, tt.wantSide),
			"choice %s draw %.1f: display %q should show %s", tt.choice, tt.draw, outcome.Display, tt.wantSide)
	}
}
