package bot

import (
	"github.com/bwmarrin/discordgo"

	"xubot/bot/common"
	"xubot/models"
)

const (
	colorWin     = 0x2ecc71
	colorLoss    = 0xe74c3c
	colorNeutral = 0x3498db
)

var gameTitles = map[models.GameKind]string{
	models.GameCoinFlip:  "🪙 Coinflip",
	models.GameTaiXiu:    "🎲 Tài Xỉu",
	models.GameSlots:     "🎰 Slots",
	models.GameBlackjack: "🃏 Blackjack",
	models.GameRPS:       "✂️ Rock Paper Scissors",
}

func buildOutcomeEmbed(outcome *models.BetOutcome) *discordgo.MessageEmbed {
	title, ok := gameTitles[outcome.Game]
	if !ok {
		title = string(outcome.Game)
	}

	color := colorLoss
	result := "You lost **" + common.FormatXu(-outcome.PayoutDelta) + " xu**."
	if outcome.Won {
		color = colorWin
		result = "You won **" + common.FormatXu(outcome.PayoutDelta) + " xu**!"
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: outcome.Display + "\n\n" + result,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stake", Value: common.FormatXu(outcome.Stake) + " xu", Inline: true},
			{Name: "Balance", Value: common.FormatXu(outcome.NewBalance) + " xu", Inline: true},
		},
	}

	if outcome.AdjustNote != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: outcome.AdjustNote}
	}

	return embed
}
