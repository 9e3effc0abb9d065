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
	// Server
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Logging
	LogFile string

	// Appearance uploads and cache
	StorageDir string
	RedisURL   string

	// Metrics endpoint key; empty leaves /metrics open
	MetricsAPIKey string

	// Login attempts allowed per client IP per minute
	LoginRatePerMinute int
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

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cashflow"),
		DBPassword: getEnv("DB_PASSWORD", "cashflow"),
		DBName:     getEnv("DB_NAME", "cashflow"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		LogFile:       getEnv("LOG_FILE", ""),
		StorageDir:    getEnv("STORAGE_DIR", "storage"),
		RedisURL:      getEnv("REDIS_URL", ""),
		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),
	}

	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	rateStr := getEnv("LOGIN_RATE_PER_MINUTE", "10")
	rate, err := strconv.Atoi(rateStr)
	if err != nil || rate <= 0 {
		log.Printf("Warning: invalid LOGIN_RATE_PER_MINUTE value '%s', falling back to 10\n", rateStr)
		rate = 10
	}
	config.LoginRatePerMinute = rate

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

// DatabaseURL returns the postgres:// URL used by golang-migrate.
func (c *Config) DatabaseURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
