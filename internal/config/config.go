package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	AMQPURL     string

	AcumbamailBaseURL   string
	AcumbamailTimeout   time.Duration
	AcumbamailFromName  string
	AcumbamailFromEmail string

	SyncInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         databaseURL(),
		AMQPURL:             getEnv("AMQP_URL", ""),
		AcumbamailBaseURL:   getEnv("ACUMBAMAIL_BASE_URL", "https://acumbamail.com/api/1"),
		AcumbamailTimeout:   getDuration("ACUMBAMAIL_TIMEOUT", 30*time.Second),
		AcumbamailFromName:  getEnv("ACUMBAMAIL_FROM_NAME", "Newsletter"),
		AcumbamailFromEmail: getEnv("ACUMBAMAIL_FROM_EMAIL", "noreply@example.com"),
		SyncInterval:        getDuration("SYNC_INTERVAL", 0),
	}
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "acumbamail_sync"),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
