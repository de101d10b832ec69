package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port          string
	DatabaseURL   string
	DBLogLevel    string
	JWTSecret     string
	PublicBaseURL string

	AdminEmail    string
	AdminPassword string
	AdminFullName string

	CloudinaryURL string
	UploadDir     string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	CatalogSeedFile     string
	CertificateTemplate string
	CertificatePrefix   string
	ResubmissionWindow  time.Duration
	MaxProofBytes       int64
	JobsEnabled         bool
}

var loadEnvOnce sync.Once

func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
}

// Config returns the raw value of an environment key after .env has been loaded.
func Config(key string) string {
	loadEnv()
	return os.Getenv(key)
}

func Load() (*AppConfig, error) {
	loadEnv()

	cfg := &AppConfig{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBLogLevel:    getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Platform Admin"),

		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),

		BrevoAPIKey:     getEnv("BREVO_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", ""),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", ""),

		CatalogSeedFile:     getEnv("CATALOG_SEED_FILE", ""),
		CertificateTemplate: getEnv("CERTIFICATE_TEMPLATE", ""),
		CertificatePrefix:   getEnv("CERTIFICATE_PREFIX", "INT"),
		ResubmissionWindow:  getEnvDuration("RESUBMISSION_WINDOW", 7*24*time.Hour),
		MaxProofBytes:       int64(getEnvInt("MAX_PROOF_BYTES", 5<<20)),
		JobsEnabled:         getEnvBool("JOBS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.ResubmissionWindow <= 0 {
		return fmt.Errorf("invalid resubmission window: %s", c.ResubmissionWindow)
	}
	if c.MaxProofBytes <= 0 {
		return fmt.Errorf("invalid MAX_PROOF_BYTES: %d", c.MaxProofBytes)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
