package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Store drivers
const (
	StoreMemory = "memory" // In-process maps (default)
	StoreMySQL  = "mysql"  // GORM over MySQL
)

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	StoreDriver string        // memory or mysql
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	JWTSecret   string        // JWT secret key
	JWTTTL      time.Duration // JWT lifetime
	RedisAddr   string        // Redis server address, empty for the in-memory cache
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	CacheTTL    time.Duration // Read cache lifetime
	LogLevel    string        // logrus level name
	IsProd      bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return FromEnv()
}

// FromEnv reads configuration from the process environment only
func FromEnv() *Config {
	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", StoreMemory),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBName:      os.Getenv("DB_NAME"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      getDuration("JWT_TTL", 24*time.Hour),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     getInt("REDIS_DB", 0),
		CacheTTL:    getDuration("CACHE_TTL", 60*time.Second),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		IsProd:      os.Getenv("IS_PROD") == "true",
	}
}

// getEnv returns the variable or fallback when unset or empty
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses an integer variable, falling back on absence or garbage
func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration parses a Go duration such as "90s" or "24h"
func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
