package main

import (
	"budget_buddy/internal/api"        // Custom package for API handlers
	"budget_buddy/internal/config"     // Custom package for configuration
	"budget_buddy/internal/middleware" // Custom package for middleware
	"budget_buddy/internal/utils"      // Custom package for JWT and cache utilities
	"context"                          // context package is needed for Redis operations
	"log"                              // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Token signing configuration handed to the auth handlers
	tokenCfg := utils.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Health endpoint
	r.GET("/", api.HealthHandler()) // Service liveness check

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db, tokenCfg)) // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, tokenCfg))       // Login endpoint

	// Profile routes (protected by JWT)
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authGroup.GET("/me", api.MeHandler(db))                           // Profile fetch endpoint
	authGroup.PATCH("/me", api.UpdateProfileHandler(db, redisClient)) // Budget update endpoint

	// Expense routes (protected by JWT)
	expenseGroup := r.Group("/expenses")
	// Protect expense routes with JWT middleware and inject Redis client into context
	expenseGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	expenseGroup.POST("", api.CreateExpenseHandler(db))                         // Create expense endpoint
	expenseGroup.GET("", api.ListExpensesHandler(db))                           // List expenses endpoint
	expenseGroup.GET("/summary", api.CategoryBreakdownHandler(db, redisClient)) // Category breakdown endpoint
	expenseGroup.GET("/summary/overview", api.OverviewHandler(db, redisClient)) // Budget overview endpoint
	expenseGroup.PATCH("/:id", api.UpdateExpenseHandler(db))                    // Update expense endpoint
	expenseGroup.DELETE("/:id", api.DeleteExpenseHandler(db))                   // Delete expense endpoint

	// Card routes (protected by JWT)
	cardGroup := r.Group("/cards")
	cardGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	cardGroup.POST("", api.CreateCardHandler(db))             // Register card endpoint
	cardGroup.GET("", api.ListCardsHandler(db))               // List cards endpoint
	cardGroup.GET("/alerts", api.CardsDueTomorrowHandler(db)) // Due-tomorrow alerts endpoint
	cardGroup.DELETE("/:id", api.DeleteCardHandler(db))       // Delete card endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
