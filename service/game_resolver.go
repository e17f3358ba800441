package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"xubot/events"
	"xubot/models"

	log "github.com/sirupsen/logrus"
)

// GameParams parameterizes one mini-game variant. All games share the same
// resolution flow; only the odds, the payout and the accepted choices differ.
type GameParams struct {
	BaseWinProbability float64
	PayoutMultiplier   int64
	Choices            []string // empty when the game takes no player choice
}

var gameParams = map[models.GameKind]GameParams{
	models.GameCoinFlip:  {BaseWinProbability: 0.5, PayoutMultiplier: 1, Choices: []string{"heads", "tails"}},
	models.GameTaiXiu:    {BaseWinProbability: 0.4865, PayoutMultiplier: 1, Choices: []string{"tai", "xiu"}},
	models.GameSlots:     {BaseWinProbability: 0.30, PayoutMultiplier: 2},
	models.GameBlackjack: {BaseWinProbability: 0.46, PayoutMultiplier: 1},
	models.GameRPS:       {BaseWinProbability: 1.0 / 3.0, PayoutMultiplier: 2, Choices: []string{"rock", "paper", "scissors"}},
}

// GameParamsFor returns the parameters for a game kind
func GameParamsFor(game models.GameKind) (GameParams, bool) {
	params, ok := gameParams[game]
	return params, ok
}

type gameResolver struct {
	wallet   WalletService
	bias     BiasPolicy
	eventBus EventPublisher
	draw     func() float64 // uniform [0,1) source for the win roll
	rng      *rand.Rand     // flavor only (dice faces, reels)
}

// NewGameResolver creates the shared resolver used by every mini-game
func NewGameResolver(wallet WalletService, bias BiasPolicy, eventBus EventPublisher) GameResolver {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &gameResolver{
		wallet:   wallet,
		bias:     bias,
		eventBus: eventBus,
		draw:     rng.Float64,
		rng:      rng,
	}
}

// newGameResolverWithDraw builds a resolver with a deterministic win roll
func newGameResolverWithDraw(wallet WalletService, bias BiasPolicy, eventBus EventPublisher, draw func() float64) GameResolver {
	return &gameResolver{
		wallet:   wallet,
		bias:     bias,
		eventBus: eventBus,
		draw:     draw,
		rng:      rand.New(rand.NewSource(1)),
	}
}

// Resolve runs one round: validate the stake, draw the bias-adjusted outcome,
// then settle a single net delta. The stake is never pre-deducted, so a
// failure before settlement leaves the balance untouched.
func (r *gameResolver) Resolve(ctx context.Context, req models.BetRequest) (*models.BetOutcome, error) {
	params, ok := gameParams[req.Game]
	if !ok {
		return nil, fmt.Errorf("unknown game %q", req.Game)
	}

	choice := strings.ToLower(strings.TrimSpace(req.Choice))
	if len(params.Choices) > 0 && !containsChoice(params.Choices, choice) {
		return nil, fmt.Errorf("%w: choose one of %s", ErrInvalidStake, strings.Join(params.Choices, ", "))
	}

	// VALIDATE
	stake, _, note, err := r.wallet.ParseBetAmount(ctx, req.UserID, req.StakeText)
	if err != nil {
		return nil, err
	}

	// RESOLVE
	probability, err := r.bias.EffectiveWinProbability(ctx, req.UserID, params.BaseWinProbability)
	if err != nil {
		return nil, fmt.Errorf("failed to get win probability: %w", err)
	}
	won := r.draw() < probability

	// SETTLE: exactly one wallet mutation per round, never retried
	var newBalance, delta int64
	if won {
		winAmount := stake * params.PayoutMultiplier
		newBalance, err = r.wallet.AddBalance(ctx, req.UserID, winAmount, models.TransactionTypeBetWin)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userID": req.UserID,
				"game":   req.Game,
			}).Error("Failed to settle winning round")
			return nil, fmt.Errorf("failed to settle round: %w", err)
		}
		delta = winAmount
	} else {
		var applied int64
		newBalance, applied, err = r.wallet.SubtractBalance(ctx, req.UserID, stake, models.TransactionTypeBetLoss)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userID": req.UserID,
				"game":   req.Game,
			}).Error("Failed to settle losing round")
			return nil, fmt.Errorf("failed to settle round: %w", err)
		}
		delta = -applied
	}

	if !won && probability == 0 {
		if unlucky, biasErr := r.bias.IsUnlucky(ctx, req.UserID); biasErr == nil && unlucky {
			if markErr := r.bias.MarkGameAffected(ctx, req.UserID); markErr != nil {
				log.WithError(markErr).WithField("userID", req.UserID).Warn("Failed to record bias-affected game")
			}
		}
	}

	r.eventBus.Emit(ctx, events.BetResolvedEvent{
		UserID:      req.UserID,
		Game:        req.Game,
		Stake:       stake,
		Won:         won,
		PayoutDelta: delta,
		NewBalance:  newBalance,
	})

	return &models.BetOutcome{
		Game:        req.Game,
		Won:         won,
		Stake:       stake,
		PayoutDelta: delta,
		NewBalance:  newBalance,
		AdjustNote:  note,
		Display:     r.display(req.Game, choice, won),
	}, nil
}

func containsChoice(choices []string, choice string) bool {
	for _, c := range choices {
		if c == choice {
			return true
		}
	}
	return false
}

// display builds presentation text consistent with the drawn outcome
func (r *gameResolver) display(game models.GameKind, choice string, won bool) string {
	switch game {
	case models.GameCoinFlip:
		face := choice
		if !won {
			if face == "heads" {
				face = "tails"
			} else {
				face = "heads"
			}
		}
		return fmt.Sprintf("🪙 The coin landed on **%s**", face)

	case models.GameTaiXiu:
		// Tài is 11-17, Xỉu is 4-10; triples are house rolls and never shown
		wantTai := choice == "tai"
		if !won {
			wantTai = !wantTai
		}
		var d1, d2, d3, sum int
		for {
			d1, d2, d3 = r.rng.Intn(6)+1, r.rng.Intn(6)+1, r.rng.Intn(6)+1
			sum = d1 + d2 + d3
			if wantTai && sum >= 11 && sum <= 17 {
				break
			}
			if !wantTai && sum >= 4 && sum <= 10 {
				break
			}
		}
		side := "Xỉu"
		if sum >= 11 {
			side = "Tài"
		}
		return fmt.Sprintf("🎲 %d + %d + %d = **%d**, %s!", d1, d2, d3, sum, side)

	case models.GameSlots:
		symbols := []string{"🍒", "🍋", "🍊", "🔔", "⭐", "💎"}
		if won {
			s := symbols[r.rng.Intn(len(symbols))]
			return fmt.Sprintf("🎰 | %s | %s | %s |", s, s, s)
		}
		a := r.rng.Intn(len(symbols))
		b := (a + 1 + r.rng.Intn(len(symbols)-1)) % len(symbols)
		c := r.rng.Intn(len(symbols))
		return fmt.Sprintf("🎰 | %s | %s | %s |", symbols[a], symbols[b], symbols[c])

	case models.GameBlackjack:
		if won {
			player := 17 + r.rng.Intn(5) // 17-21
			dealer := player - 1 - r.rng.Intn(player-16)
			return fmt.Sprintf("🃏 Your hand **%d** beats the dealer's **%d**", player, dealer)
		}
		dealer := 17 + r.rng.Intn(5)
		player := dealer - 1 - r.rng.Intn(dealer-16)
		return fmt.Sprintf("🃏 The dealer's **%d** beats your hand **%d**", dealer, player)

	case models.GameRPS:
		beats := map[string]string{"rock": "scissors", "paper": "rock", "scissors": "paper"}
		beatenBy := map[string]string{"rock": "paper", "paper": "scissors", "scissors": "rock"}
		if won {
			return fmt.Sprintf("✊ You threw **%s**, the bot threw **%s**", choice, beats[choice])
		}
		return fmt.Sprintf("✊ You threw **%s**, the bot threw **%s**", choice, beatenBy[choice])
	}
	return ""
}
