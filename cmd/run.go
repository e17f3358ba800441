package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"xubot/bot"
	"xubot/config"
	"xubot/database"
	"xubot/events"
	"xubot/repository"
	"xubot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting xubot...")

	// Load configuration
	cfg := config.Get()

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()

	// Audit trail: every balance change is logged
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		change, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		logrus.WithFields(logrus.Fields{
			"userID":          change.UserID,
			"oldBalance":      change.OldBalance,
			"newBalance":      change.NewBalance,
			"changeAmount":    change.ChangeAmount,
			"transactionType": change.TransactionType,
		}).Debug("Balance changed")
	})

	// Initialize stores. DATABASE_URL selects Postgres, otherwise ledger
	// and bias records live as JSON files under the data directory.
	var (
		ledgerStore service.LedgerStore
		biasStore   service.BiasStore
		db          *database.DB
	)
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		var err error
		db, err = database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Println("Database connection established successfully")

		ledgerStore = repository.NewPostgresLedgerStore(db, cfg.StartingBalance)
		biasStore = repository.NewPostgresBiasStore(db)
	} else {
		log.Printf("Using file-backed stores under %s", cfg.DataDir)
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		var err error
		ledgerStore, err = repository.NewFileLedgerStore(repository.DefaultLedgerPath(cfg.DataDir), cfg.StartingBalance)
		if err != nil {
			return fmt.Errorf("failed to open ledger store: %w", err)
		}
		biasStore, err = repository.NewFileBiasStore(repository.DefaultBiasPath(cfg.DataDir))
		if err != nil {
			return fmt.Errorf("failed to open bias store: %w", err)
		}
	}

	// Initialize services
	log.Println("Initializing services...")
	walletService := service.NewWalletService(ledgerStore, eventBus)
	biasPolicy := service.NewBiasPolicy(biasStore, walletService, service.BiasConfig{
		HighBalanceThreshold: cfg.HighBalanceThreshold,
		HighBalancePenalty:   cfg.HighBalancePenalty,
		LowBalanceBoost:      cfg.LowBalanceBoost,
	}, eventBus)
	gameResolver := service.NewGameResolver(walletService, biasPolicy, eventBus)
	adminService := service.NewAdminService(ledgerStore, biasStore, walletService)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.DiscordGuildID,
		BigWinAnnounceMin: cfg.BigWinAnnounceMin,
		AnnounceChannelID: cfg.AnnounceChannelID,
		AdminDiscordIDs:   cfg.AdminDiscordIDs,
	}
	discordBot, err := bot.New(botConfig, walletService, gameResolver, biasPolicy, adminService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if db != nil {
		log.Println("Closing database connection...")
		db.Close()
	}

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
