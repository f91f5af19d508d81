package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPPort string

	KafkaBrokers []string
	AuditTopic   string
	AuditWorkers int
	AuditBatch   int
	AuditFlush   time.Duration

	AdminUsername string
	AdminPassword string

	LogLevel string

	// plaintext or bcrypt; controls how stored secrets are compared.
	CredentialMode string
}

// Load reads the environment, first trying .env files in the working
// directory and its parents. Missing variables fall back to defaults so the
// CLI stays usable without any configuration.
func Load() *Config {
	loadEnv()

	return &Config{
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		HTTPPort:       getEnv("HTTP_PORT", "9000"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		AuditTopic:     getEnv("AUDIT_TOPIC", "audit_logs"),
		AuditWorkers:   getEnvInt("AUDIT_WORKERS", 2),
		AuditBatch:     getEnvInt("AUDIT_BATCH_SIZE", 5),
		AuditFlush:     time.Duration(getEnvInt("AUDIT_FLUSH_MS", 500)) * time.Millisecond,
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CredentialMode: getEnv("CREDENTIAL_MODE", "plaintext"),
	}
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Error getting working directory: %v", err)
		return
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf("Loaded environment variables from %s", envPath)
			return
		}
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
