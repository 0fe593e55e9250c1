package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port string

	// Ledger
	Location  *time.Location
	CreatedBy string

	// Reminders
	RemindersEnabled bool
	TelegramToken    string
	TelegramChatID   string
	AMQPURL          string
	AMQPExchange     string
	AMQPQueue        string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		CreatedBy: getEnv("CREATED_BY", "User"),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "cashbook"),
		AMQPQueue:      getEnv("AMQP_QUEUE", "reminders"),
	}

	tz := getEnv("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE value '%s', falling back to Local\n", tz)
		loc = time.Local
	}
	config.Location = loc

	enabled := getEnv("REMINDERS_ENABLED", "true")
	config.RemindersEnabled, err = strconv.ParseBool(enabled)
	if err != nil {
		log.Printf("Warning: invalid REMINDERS_ENABLED value '%s', falling back to true\n", enabled)
		config.RemindersEnabled = true
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
