package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// JWT
	JWTSecret string

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Scan
	ScanDaysBack     int
	ScanMaxResults   int
	ScanLockTTL      time.Duration
	StrictResolution bool

	// Classification
	ConfidenceThreshold float64

	// Extra signal vocabulary appended to the built-in keyword families.
	ExtraRejectionKeywords    []string
	ExtraInterviewKeywords    []string
	ExtraOfferKeywords        []string
	ExtraConfirmationKeywords []string
	ExtraATSDomains           []string

	// Background worker
	WorkerEnabled  bool
	WorkerInterval time.Duration

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "jobtrack"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// OAuth - Google
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),

		// Scan
		ScanDaysBack:     getEnvInt("SCAN_DAYS_BACK", 30),
		ScanMaxResults:   getEnvInt("SCAN_MAX_RESULTS", 200),
		ScanLockTTL:      time.Duration(getEnvInt("SCAN_LOCK_TTL_SEC", 300)) * time.Second,
		StrictResolution: getEnvBool("SCAN_STRICT_RESOLUTION", false),

		// Classification
		ConfidenceThreshold: getEnvFloat("CLASSIFY_CONFIDENCE_THRESHOLD", 0.5),

		ExtraRejectionKeywords:    getEnvSlice("CLASSIFY_EXTRA_REJECTION_KEYWORDS", nil),
		ExtraInterviewKeywords:    getEnvSlice("CLASSIFY_EXTRA_INTERVIEW_KEYWORDS", nil),
		ExtraOfferKeywords:        getEnvSlice("CLASSIFY_EXTRA_OFFER_KEYWORDS", nil),
		ExtraConfirmationKeywords: getEnvSlice("CLASSIFY_EXTRA_CONFIRMATION_KEYWORDS", nil),
		ExtraATSDomains:           getEnvSlice("CLASSIFY_EXTRA_ATS_DOMAINS", nil),

		// Background worker
		WorkerEnabled:  getEnvBool("SCAN_WORKER_ENABLED", false),
		WorkerInterval: time.Duration(getEnvInt("SCAN_WORKER_INTERVAL_MIN", 60)) * time.Minute,

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
