package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Booking workflow configuration
	Booking BookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration. The secret is shared with
// the identity service that mints the tokens.
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// PaymentConfig holds PAYable IPG configuration
type PaymentConfig struct {
	Environment        string // "dev", "sandbox" or "production"
	MerchantKey        string // PAYable merchant key
	MerchantToken      string // PAYable merchant token (SECRET - never expose to client)
	LogoURL            string // Merchant logo URL for payment page
	ReturnURL          string // URL to redirect after payment
	WebhookURL         string // Server webhook URL for payment notifications
	StatusPollInterval time.Duration
}

// BookingConfig holds mentor session booking configuration
type BookingConfig struct {
	SessionMinutes  int           // Fixed session length
	Currency        string        // Single currency per booking
	CheckoutTimeout time.Duration // How long to wait for the hosted checkout
	StoreTimeout    time.Duration // Bound on durable store writes
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Payment: PaymentConfig{
			Environment:        getEnv("PAYABLE_ENVIRONMENT", "sandbox"),
			MerchantKey:        getEnv("PAYABLE_MERCHANT_KEY", ""),
			MerchantToken:      getEnv("PAYABLE_MERCHANT_TOKEN", ""),
			LogoURL:            getEnv("PAYABLE_LOGO_URL", ""),
			ReturnURL:          getEnv("PAYABLE_RETURN_URL", ""),
			WebhookURL:         getEnv("PAYABLE_WEBHOOK_URL", ""),
			StatusPollInterval: time.Duration(getEnvAsInt("PAYABLE_STATUS_POLL_SECONDS", 5)) * time.Second,
		},
		Booking: BookingConfig{
			SessionMinutes:  getEnvAsInt("SESSION_DURATION_MINUTES", models.DefaultSessionMinutes),
			Currency:        getEnv("BOOKING_CURRENCY", "LKR"),
			CheckoutTimeout: time.Duration(getEnvAsInt("CHECKOUT_TIMEOUT_SECONDS", 900)) * time.Second,
			StoreTimeout:    time.Duration(getEnvAsInt("STORE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Booking.SessionMinutes <= 0 {
		return fmt.Errorf("SESSION_DURATION_MINUTES must be positive")
	}

	// Merchant credentials are only mandatory in production; sandbox and
	// dev fall back to the degraded checkout behaviour
	if c.Server.Environment == "production" {
		if c.Payment.MerchantKey == "" {
			return fmt.Errorf("PAYABLE_MERCHANT_KEY is required in production")
		}
		if c.Payment.MerchantToken == "" {
			return fmt.Errorf("PAYABLE_MERCHANT_TOKEN is required in production")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
