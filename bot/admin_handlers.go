package bot

import (
	"context"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"

	"xubot/bot/common"
	"xubot/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.config.AdminDiscordIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) handleAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, adminID int64) {
	if !b.isAdmin(adminID) {
		common.RespondWithError(s, i, "You are not allowed to use admin commands.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]

	switch sub.Name {
	case "grant":
		b.handleAdminGrant(s, i, adminID, sub.Options)
	case "reset":
		b.handleAdminReset(s, i, sub.Options)
	case "resetall":
		b.handleAdminResetAll(s, i, adminID, sub.Options)
	case "unlucky":
		b.handleAdminUnlucky(s, i, adminID, sub.Options)
	case "lucky":
		b.handleAdminLucky(s, i, sub.Options)
	case "reload":
		b.handleAdminReload(s, i)
	}
}

func optionUserID(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range opts {
		if opt.Name == name {
			id, _ := strconv.ParseInt(opt.UserValue(nil).ID, 10, 64)
			return id
		}
	}
	return 0
}

func optionInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func optionBool(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.BoolValue()
		}
	}
	return false
}

func (b *Bot) handleAdminGrant(s *discordgo.Session, i *discordgo.InteractionCreate, adminID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	targetID := optionUserID(opts, "user")
	amount := optionInt(opts, "amount")

	newBalance, err := b.adminService.Grant(context.Background(), adminID, targetID, amount)
	if err != nil {
		log.Errorf("Admin grant to %d failed: %v", targetID, err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Grant applied",
		Description: "Credited **" + common.FormatXu(amount) + " xu** to <@" + strconv.FormatInt(targetID, 10) +
			">. New balance: **" + common.FormatXu(newBalance) + " xu**",
		Color: colorWin,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to admin grant: %v", err)
	}
}

func (b *Bot) handleAdminReset(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	targetID := optionUserID(opts, "user")

	if err := b.adminService.ResetUserMoney(context.Background(), targetID); err != nil {
		log.Errorf("Admin reset of %d failed: %v", targetID, err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "✅ Balance reset",
		Description: "<@" + strconv.FormatInt(targetID, 10) + "> now has **0 xu**",
		Color:       colorNeutral,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to admin reset: %v", err)
	}
}

func (b *Bot) handleAdminResetAll(s *discordgo.Session, i *discordgo.InteractionCreate, adminID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !optionBool(opts, "confirm") {
		common.RespondWithError(s, i, "This zeroes every balance. Re-run with confirm set to true.")
		return
	}

	result, err := b.adminService.ResetAllBalances(context.Background())
	if err != nil {
		log.Errorf("Admin resetall failed: %v", err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	log.Infof("Admin %d reset all balances, %d accounts affected", adminID, result.AccountsReset)

	embed := &discordgo.MessageEmbed{
		Title:       "✅ All balances reset",
		Description: strconv.Itoa(result.AccountsReset) + " accounts were holding xu and are now at 0.",
		Color:       colorNeutral,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to admin resetall: %v", err)
	}
}

func (b *Bot) handleAdminUnlucky(s *discordgo.Session, i *discordgo.InteractionCreate, adminID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	targetID := optionUserID(opts, "user")
	reason := optionString(opts, "reason")

	err := b.biasPolicy.AddUnlucky(context.Background(), adminID, targetID, reason)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateBiasRecord) {
			common.RespondWithError(s, i, "That user is already marked unlucky.")
			return
		}
		log.Errorf("Failed to mark %d unlucky: %v", targetID, err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🌧️ Marked unlucky",
		Description: "<@" + strconv.FormatInt(targetID, 10) + "> will now lose every bet.",
		Color:       colorLoss,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to admin unlucky: %v", err)
	}
}

func (b *Bot) handleAdminLucky(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	targetID := optionUserID(opts, "user")

	err := b.biasPolicy.RemoveUnlucky(context.Background(), targetID)
	if err != nil {
		if errors.Is(err, service.ErrMissingBiasRecord) {
			common.RespondWithError(s, i, "That user is not marked unlucky.")
			return
		}
		log.Errorf("Failed to unmark %d: %v", targetID, err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "☀️ Unlucky mark removed",
		Description: "<@" + strconv.FormatInt(targetID, 10) + "> plays at normal odds again.",
		Color:       colorWin,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to admin lucky: %v", err)
	}
}

func (b *Bot) handleAdminReload(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.adminService.Reload(context.Background()); err != nil {
		log.Errorf("Admin reload failed: %v", err)
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "✅ Reloaded",
		Description: "Ledger and bias records were re-read from the backing store.",
		Color:       colorNeutral,
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Failed to respond to admin reload: %v", err)
	}
}
