package main

import (
	"context" // context package is needed for Redis operations

	"banking_api/internal/api"     // Custom package for API handlers
	"banking_api/internal/auth"    // Credentials and tokens
	"banking_api/internal/config"  // Custom package for configuration
	"banking_api/internal/db"      // Database connection
	"banking_api/internal/service" // Core services
	"banking_api/internal/store"   // Storage backends
	"banking_api/internal/utils"   // Cache

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine readable in production
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Select the storage backend
	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		gdb, err := db.Open(db.DSN(cfg))
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		st = store.NewGormStore(gdb)
	case config.StoreMemory:
		st = store.NewMemoryStore()
	default:
		logrus.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// Setup cache, Redis when configured
	var cache utils.Cache = utils.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = utils.NewRedisCache(redisClient)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	bank := service.New(st)
	r, err := api.NewRouter(api.Deps{
		Bank:     bank,
		Auth:     auth.New(bank.Ledger, cfg.JWTSecret, cfg.JWTTTL),
		Cache:    cache,
		CacheTTL: cfg.CacheTTL,
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":  cfg.AppPort,     // Listen port
		"store": cfg.StoreDriver, // Storage backend
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
