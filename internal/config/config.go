package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	SourceStatic   = "static"
	SourcePostgres = "postgres"

	JournalMemory   = "memory"
	JournalPostgres = "postgres"
	JournalOff      = "off"

	GoalRuleCompleted = "completed"
	GoalRuleResolved  = "resolved"
)

type Config struct {
	Logger   LoggerConfig
	GRPC     GRPCConfig
	Deck     DeckConfig
	Database DatabaseConfig
	Smoke    bool
}

type LoggerConfig struct {
	Env string
	// File is where the terminal client logs, since stdout belongs to the UI.
	File string
}

type GRPCConfig struct {
	Port int
}

type DeckConfig struct {
	Source        string
	Journal       string
	FeedLimit     int
	DailyGoalRule string
}

type DatabaseConfig struct {
	Host     string
	Name     string
	User     string
	Password string
	Port     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		Logger: LoggerConfig{
			Env:  getEnv("LOGGER_ENV", "development"),
			File: getEnv("LOG_FILE", "dopamine-deck.log"),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Deck: DeckConfig{
			Source:        getEnv("DECK_SOURCE", SourceStatic),
			Journal:       getEnv("JOURNAL", JournalMemory),
			FeedLimit:     getEnvInt("FEED_LIMIT", 20),
			DailyGoalRule: getEnv("DAILY_GOAL_RULE", GoalRuleCompleted),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Name:     getEnv("POSTGRES_DB", "dopamine_deck"),
			User:     getEnv("POSTGRES_USER", "dopamine_deck"),
			Password: getEnv("POSTGRES_PASSWORD", "dopamine_deck"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
		},
		Smoke: getEnvBool("SMOKE_TEST", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NeedsDatabase reports whether any component reads or writes Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Deck.Source == SourcePostgres || c.Deck.Journal == JournalPostgres
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

func (c *Config) validate() error {
	switch c.Deck.Source {
	case SourceStatic, SourcePostgres:
	default:
		return fmt.Errorf("invalid DECK_SOURCE %q", c.Deck.Source)
	}
	switch c.Deck.Journal {
	case JournalMemory, JournalPostgres, JournalOff:
	default:
		return fmt.Errorf("invalid JOURNAL %q", c.Deck.Journal)
	}
	switch c.Deck.DailyGoalRule {
	case GoalRuleCompleted, GoalRuleResolved:
	default:
		return fmt.Errorf("invalid DAILY_GOAL_RULE %q", c.Deck.DailyGoalRule)
	}
	if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPC.Port)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
