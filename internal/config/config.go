// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string        // APP_ENV: dev, test, prod
	Port           string        // APP_PORT
	RequestTimeout time.Duration // APP_REQUEST_TIMEOUT, per-request deadline

	DBUser        string        // DB_USER
	DBPass        string        // DB_PASS (empty allowed)
	DBHost        string        // DB_HOST
	DBPort        string        // DB_PORT
	DBName        string        // DB_NAME
	DBMaxOpen     int           // DB_MAX_OPEN_CONNS
	DBMigrate     bool          // DB_MIGRATE, apply migrations at start-up
	TxMaxRetries  uint64        // DB_TX_MAX_RETRIES, transient fault replays
	TxRetryBase   time.Duration // DB_TX_RETRY_BASE, first backoff delay
	JWTSecret     string        // JWT_SECRET, verifies access tokens
	RabbitURL     string        // RABBITMQ_URL, empty disables events
	EventsQueue   string        // BOOKING_EVENTS_QUEUE
	EventConsumer bool          // BOOKING_EVENTS_CONSUMER, run the in-process consumer
	EventsTimeout time.Duration // BOOKING_EVENTS_PUBLISH_TIMEOUT, bound on one post-commit publish
}

// Load reads an optional .env file and then the environment. Required
// variables are enforced by must() and missing values stop the program.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		RequestTimeout: envDur("APP_REQUEST_TIMEOUT", 10*time.Second),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpen:      envInt("DB_MAX_OPEN_CONNS", 25),
		DBMigrate:      envBool("DB_MIGRATE", false),
		TxMaxRetries:   uint64(max(envInt("DB_TX_MAX_RETRIES", 3), 0)),
		TxRetryBase:    envDur("DB_TX_RETRY_BASE", 50*time.Millisecond),
		JWTSecret:      must("JWT_SECRET"),
		RabbitURL:      firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		EventsQueue:    envStr("BOOKING_EVENTS_QUEUE", "booking.events"),
		EventConsumer:  envBool("BOOKING_EVENTS_CONSUMER", false),
		EventsTimeout:  envDur("BOOKING_EVENTS_PUBLISH_TIMEOUT", 2*time.Second),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
