package bot

import (
	"context"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"

	"xubot/bot/common"
	"xubot/models"
	"xubot/service"

	"github.com/bwmarrin/discordgo"
)

// handleCommands dispatches slash commands. The command layer performs no
// balance math; every operation goes through the wallet engine.
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	userID, err := interactionUserID(i)
	if err != nil {
		log.Errorf("Failed to parse interaction user ID: %v", err)
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "balance":
		b.handleBalance(s, i, userID)
	case "coinflip":
		b.handleGame(s, i, userID, models.GameCoinFlip, "side")
	case "taixiu":
		b.handleGame(s, i, userID, models.GameTaiXiu, "side")
	case "slots":
		b.handleGame(s, i, userID, models.GameSlots, "")
	case "blackjack":
		b.handleGame(s, i, userID, models.GameBlackjack, "")
	case "rps":
		b.handleGame(s, i, userID, models.GameRPS, "throw")
	case "give":
		b.handleGive(s, i, userID)
	case "admin":
		b.handleAdmin(s, i, userID)
	}
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	balance, err := b.wallet.GetBalance(context.Background(), userID)
	if err != nil {
		log.Errorf("Failed to get balance for %d: %v", userID, err)
		common.RespondWithError(s, i, "Something went wrong, try again later.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "💰 Balance",
		Description: "You have **" + common.FormatXu(balance) + " xu**",
		Color:       colorNeutral,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to balance command: %v", err)
	}
}

func (b *Bot) handleGame(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64, game models.GameKind, choiceName string) {
	if !b.tryAcquire(userID) {
		common.RespondWithError(s, i, "Finish your current round first.")
		return
	}
	defer b.release(userID)

	var stakeText, choice string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "stake":
			stakeText = opt.StringValue()
		case choiceName:
			choice = opt.StringValue()
		}
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Failed to defer game response: %v", err)
		return
	}

	outcome, err := b.gameResolver.Resolve(context.Background(), models.BetRequest{
		UserID:    userID,
		StakeText: stakeText,
		Game:      game,
		Choice:    choice,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidStake) {
			common.FollowUpWithError(s, i, err.Error())
			return
		}
		log.Errorf("Failed to resolve %s round for %d: %v", game, userID, err)
		common.FollowUpWithError(s, i, "Something went wrong, your balance was not touched.")
		return
	}

	common.FollowUpWithEmbed(s, i, buildOutcomeEmbed(outcome))
}

func (b *Bot) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	var toID, amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			toID, _ = strconv.ParseInt(opt.UserValue(nil).ID, 10, 64)
		case "amount":
			amount = opt.IntValue()
		}
	}

	result, err := b.wallet.Transfer(context.Background(), userID, toID, amount)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			common.RespondWithError(s, i, "You don't have enough xu for that.")
			return
		}
		log.Errorf("Failed transfer %d -> %d: %v", userID, toID, err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "💸 Transfer complete",
		Description: "Gave **" + common.FormatXu(result.Amount) + " xu** to <@" + strconv.FormatInt(result.RecipientID, 10) +
			">. Your balance: **" + common.FormatXu(result.NewBalance) + " xu**",
		Color: colorWin,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Failed to respond to give command: %v", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) (int64, error) {
	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	return strconv.ParseInt(user.ID, 10, 64)
}
