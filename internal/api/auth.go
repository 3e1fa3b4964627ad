package api

import (
	"budget_buddy/internal/domain" // Importing domain models
	"budget_buddy/internal/utils"  // Utility functions
	"context"                      // Context for Redis operations
	"errors"                       // Error inspection
	"net/http"                     // HTTP status codes
	"strings"                      // String manipulation
	"time"                         // Timestamp type in responses

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// bcryptCost is the hashing cost factor for stored passwords
const bcryptCost = 12

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// UserResponse holds the public user fields returned by the API
type UserResponse struct {
	ID            uint      `json:"id"`            // User ID
	Email         string    `json:"email"`         // Email address
	MonthlyBudget *float64  `json:"monthlyBudget"` // Monthly budget ceiling, null when unset
	CreatedAt     time.Time `json:"createdAt"`     // Account creation timestamp
}

// publicUser maps a user record to its public representation
func publicUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,            // User ID
		Email:         u.Email,         // Email address
		MonthlyBudget: u.MonthlyBudget, // Monthly budget ceiling
		CreatedAt:     u.CreatedAt,     // Account creation timestamp
	}
}

// RegisterHandler creates a new user account and returns a session token
func RegisterHandler(db *gorm.DB, tokenCfg utils.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email)) // Normalize email to lowercase
		// Check whether the email is already registered
		var existing domain.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			// Duplicate email is a conflict
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			// Any other lookup failure is a server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Email: email, PasswordHash: string(hash)}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// A concurrent registration can still hit the unique index
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
				return
			}
			// Any other persistence failure is a server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Generate the session token
		token, err := utils.GenerateJWT(user.ID, user.Email, tokenCfg)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // User ID
		}).Info("User registered") // Log registration
		// Return the token plus the public user fields
		c.JSON(http.StatusCreated, gin.H{"token": token, "user": publicUser(&user)})
	}
}

// LoginHandler authenticates a user and returns a session token.
// Unknown email and wrong password produce the same response so a caller
// cannot tell which check failed.
func LoginHandler(db *gorm.DB, tokenCfg utils.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate the session token
		token, err := utils.GenerateJWT(user.ID, user.Email, tokenCfg)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token plus the public user fields
		c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(&user)})
	}
}

// MeHandler returns the authenticated user's public profile
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token was valid but the account no longer exists
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Return public fields only, never the password hash
		c.JSON(http.StatusOK, gin.H{"user": publicUser(&user)})
	}
}

// UpdateProfileRequest lists the fields a user may change on their own
// profile. Only monthlyBudget is settable; anything else in the request body
// is ignored, not rejected.
type UpdateProfileRequest struct {
	MonthlyBudget *float64 `json:"monthlyBudget"` // New budget ceiling, omitted = no change
}

// UpdateProfileHandler mutates the authenticated user's monthly budget
func UpdateProfileHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Budget, when supplied, must be non-negative
		if req.MonthlyBudget != nil && *req.MonthlyBudget < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "monthlyBudget must be non-negative"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token was valid but the account no longer exists
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Apply the budget change if one was supplied
		if req.MonthlyBudget != nil {
			if err := db.Model(&user).Update("monthly_budget", *req.MonthlyBudget).Error; err != nil {
				// If the update fails, return internal server error
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
				return
			}
			user.MonthlyBudget = req.MonthlyBudget
			// Log the budget change
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,            // User ID
				"budget":  *req.MonthlyBudget, // New budget ceiling
			}).Info("Monthly budget updated") // Log budget update
			// A budget change affects every cached month overview for this user
			ctx := context.Background()
			_ = utils.DeleteCachePrefix(ctx, rdb, utils.OverviewCachePrefix(user.ID))
		}
		// Return the updated public profile
		c.JSON(http.StatusOK, gin.H{"user": publicUser(&user)})
	}
}
