package bot

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"xubot/bot/common"
	"xubot/events"
	"xubot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	BigWinAnnounceMin int64
	AnnounceChannelID string
	AdminDiscordIDs   []int64
}

type Bot struct {
	config       Config
	session      *discordgo.Session
	wallet       service.WalletService
	gameResolver service.GameResolver
	biasPolicy   service.BiasPolicy
	adminService service.AdminService
	eventBus     *events.Bus

	// one in-flight round per user; a slow command cannot be re-entered
	inFlight sync.Map // user id -> struct{}
}

func New(config Config, wallet service.WalletService, gameResolver service.GameResolver, biasPolicy service.BiasPolicy, adminService service.AdminService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:       config,
		session:      dg,
		wallet:       wallet,
		gameResolver: gameResolver,
		biasPolicy:   biasPolicy,
		adminService: adminService,
		eventBus:     eventBus,
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce big wins in the configured channel
	if bot.config.AnnounceChannelID != "" {
		eventBus.Subscribe(events.EventTypeBetResolved, func(ctx context.Context, event events.Event) {
			resolved, ok := event.(events.BetResolvedEvent)
			if !ok || !resolved.Won || resolved.PayoutDelta < bot.config.BigWinAnnounceMin {
				return
			}
			bot.announceBigWin(resolved)
		})
		log.Info("Big win announcements enabled")
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// tryAcquire marks a user as having a round in flight
func (b *Bot) tryAcquire(userID int64) bool {
	_, loaded := b.inFlight.LoadOrStore(userID, struct{}{})
	return !loaded
}

func (b *Bot) release(userID int64) {
	b.inFlight.Delete(userID)
}

func (b *Bot) announceBigWin(resolved events.BetResolvedEvent) {
	content := fmt.Sprintf("🎉 <@%d> just won **%s xu** playing %s!",
		resolved.UserID, common.FormatXu(resolved.PayoutDelta), resolved.Game)
	if _, err := b.session.ChannelMessageSend(b.config.AnnounceChannelID, content); err != nil {
		log.Errorf("Failed to announce big win: %v", err)
	}
}
