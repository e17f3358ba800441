package models

// GameKind identifies one of the mini-games sharing the wallet
type GameKind string

const (
	GameCoinFlip  GameKind = "coinflip"
	GameTaiXiu    GameKind = "taixiu"
	GameSlots     GameKind = "slots"
	GameBlackjack GameKind = "blackjack"
	GameRPS       GameKind = "rps"
)

// BetRequest is the input for one round of a game. It is never persisted.
type BetRequest struct {
	UserID    int64
	StakeText string
	Game      GameKind
	Choice    string
}

// BetOutcome is the settled result of one round (returned to the command layer)
type BetOutcome struct {
	Game        GameKind
	Won         bool
	Stake       int64
	PayoutDelta int64 // net balance change, negative on a loss
	NewBalance  int64
	AdjustNote  string // set when the stake was capped to the available balance
	Display     string // presentation text for the drawn outcome (dice faces, reels, ...)
}

// TransferResult represents the outcome of a transfer (returned to the user)
type TransferResult struct {
	Amount      int64
	RecipientID int64
	NewBalance  int64
}

// ResetResult reports a bulk balance reset
type ResetResult struct {
	AccountsReset int
}
