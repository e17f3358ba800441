package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func stakeOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "stake",
		Description: "Amount of xu to bet (number, k/m suffix, or \"all\")",
		Required:    true,
	}
}

func choiceOption(name, description string, values []string) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
	for _, v := range values {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return opt
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current xu balance",
		},
		{
			Name:        "coinflip",
			Description: "Flip a coin, double or nothing",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
				choiceOption("side", "Heads or tails", []string{"heads", "tails"}),
			},
		},
		{
			Name:        "taixiu",
			Description: "Tài xỉu: bet on three dice",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
				choiceOption("side", "Tài (11-17) or xỉu (4-10)", []string{"tai", "xiu"}),
			},
		},
		{
			Name:        "slots",
			Description: "Spin the slot machine",
			Options:     []*discordgo.ApplicationCommandOption{stakeOption()},
		},
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack against the house",
			Options:     []*discordgo.ApplicationCommandOption{stakeOption()},
		},
		{
			Name:        "rps",
			Description: "Rock-paper-scissors against the bot",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
				choiceOption("throw", "Your throw", []string{"rock", "paper", "scissors"}),
			},
		},
		{
			Name:        "give",
			Description: "Transfer xu to another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to give xu to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount of xu",
					Required:    true,
				},
			},
		},
		{
			Name:        "admin",
			Description: "Wallet administration (allowlisted admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "grant",
					Description: "Credit xu to a user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Recipient",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount of xu",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Zero a user's balance",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to reset",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "resetall",
					Description: "Zero every balance (irreversible)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "confirm",
							Description: "Set to true to confirm",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unlucky",
					Description: "Force a user to lose every bet",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Target user",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "Why",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "lucky",
					Description: "Remove a user's unlucky mark",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Target user",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reload",
					Description: "Reload ledger and bias records from disk",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
	}

	return nil
}
