package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Persistence: DATABASE_URL selects the Postgres backend, otherwise
	// ledger and bias records live as JSON files under DataDir
	DatabaseURL string
	DataDir     string

	// Wallet configuration
	StartingBalance int64

	// Bias policy tuning
	HighBalanceThreshold int64
	HighBalancePenalty   float64
	LowBalanceBoost      float64

	// Bot configuration
	BigWinAnnounceMin int64   // payout floor for public big-win announcements
	AnnounceChannelID string  // channel for big-win announcements, empty disables them
	AdminDiscordIDs   []int64 // Discord IDs allowed to use /admin

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DataDir:     os.Getenv("DATA_DIR"),

		// Defaults
		StartingBalance:      1000,
		HighBalanceThreshold: 600_000_000,
		HighBalancePenalty:   0.60,
		LowBalanceBoost:      0.10,
		BigWinAnnounceMin:    1_000_000,
		AnnounceChannelID:    os.Getenv("ANNOUNCE_CHANNEL_ID"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.DataDir == "" {
		config.DataDir = "data"
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if threshold := os.Getenv("HIGH_BALANCE_THRESHOLD"); threshold != "" {
		if parsed, err := strconv.ParseInt(threshold, 10, 64); err == nil && parsed > 0 {
			config.HighBalanceThreshold = parsed
		}
	}
	if penalty := os.Getenv("HIGH_BALANCE_PENALTY"); penalty != "" {
		if parsed, err := strconv.ParseFloat(penalty, 64); err == nil && parsed > 0 && parsed <= 1 {
			config.HighBalancePenalty = parsed
		}
	}
	if boost := os.Getenv("LOW_BALANCE_BOOST"); boost != "" {
		if parsed, err := strconv.ParseFloat(boost, 64); err == nil && parsed >= 0 {
			config.LowBalanceBoost = parsed
		}
	}
	if announce := os.Getenv("BIG_WIN_ANNOUNCE_MIN"); announce != "" {
		if parsed, err := strconv.ParseInt(announce, 10, 64); err == nil {
			config.BigWinAnnounceMin = parsed
		}
	}

	// Parse admin Discord IDs
	if adminIDs := os.Getenv("ADMIN_DISCORD_IDS"); adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				config.AdminDiscordIDs = append(config.AdminDiscordIDs, id)
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
	}

	return config, nil
}
