package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// ServiceToken authenticates internal callers (and the Pub/Sub trigger)
	// as the system's own service identity.
	ServiceToken string

	// VAPID identity, base64url-encoded. Loaded once; rotating it is a restart.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	PushWorkers int
	PushTimeout time.Duration
	PushTTL     int

	GoogleProjectID   string
	GooglePubSubTopic string
	GoogleCredentials string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	pushTimeout := 10 * time.Second
	if t := os.Getenv("PUSH_TIMEOUT"); t != "" {
		if parsed, err := time.ParseDuration(t); err == nil {
			pushTimeout = parsed
		}
	}

	pushWorkers := 8
	if w := os.Getenv("PUSH_WORKERS"); w != "" {
		if parsed, err := strconv.Atoi(w); err == nil && parsed > 0 {
			pushWorkers = parsed
		}
	}

	pushTTL := 86400
	if t := os.Getenv("PUSH_TTL"); t != "" {
		if parsed, err := strconv.Atoi(t); err == nil && parsed > 0 {
			pushTTL = parsed
		}
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=notify port=5432 sslmode=disable"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		ServiceToken:      getEnv("SERVICE_TOKEN", ""),
		VAPIDPublicKey:    getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:   getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:      getEnv("VAPID_SUBJECT", ""),
		PushWorkers:       pushWorkers,
		PushTimeout:       pushTimeout,
		PushTTL:           pushTTL,
		GoogleProjectID:   getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic: getEnv("GOOGLE_PUBSUB_TOPIC", ""),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
