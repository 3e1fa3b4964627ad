package api

import (
	"budget_buddy/internal/budget" // Month window and overview calculations
	"budget_buddy/internal/domain" // Importing domain models
	"budget_buddy/internal/utils"  // Utility functions
	"context"                      // Context for Redis operations
	"errors"                       // Error inspection
	"net/http"                     // HTTP status codes
	"time"                         // Time parsing and durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// cacheTTL is how long aggregate responses stay in Redis
const cacheTTL = 60 * time.Second

// CreateExpenseRequest represents an expense creation request
type CreateExpenseRequest struct {
	Category   string   `json:"category" binding:"required"`   // Category must be provided
	Amount     *float64 `json:"amount" binding:"required"`     // Amount must be provided, pointer so 0 passes required
	OccurredOn string   `json:"occurredOn" binding:"required"` // Date must be provided
	Note       string   `json:"note"`                          // Optional note
}

// UpdateExpenseRequest lists every optionally-settable expense field.
// Absent fields are left untouched.
type UpdateExpenseRequest struct {
	Category   *string  `json:"category"`   // New category
	Amount     *float64 `json:"amount"`     // New amount, must stay non-negative
	OccurredOn *string  `json:"occurredOn"` // New date
	Note       *string  `json:"note"`       // New note
}

// parseExpenseDate accepts a plain calendar date or a full RFC 3339 timestamp
func parseExpenseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil // Plain calendar date, midnight UTC
	}
	return time.Parse(time.RFC3339, s) // Full timestamp
}

// invalidateSummaryCaches drops the cached aggregates touched by a mutation
// of an expense dated occurredOn. Month-scoped keys for that month plus the
// all-time breakdown key cover every affected response.
func invalidateSummaryCaches(c *gin.Context, userID uint, occurredOn time.Time) {
	rdb, ok := c.MustGet("redisClient").(*redis.Client) // Redis client injected by the route group
	if !ok {
		return
	}
	ctx := context.Background() // Context for Redis operations
	month := budget.CurrentMonth(occurredOn)
	_ = utils.DeleteCache(ctx, rdb, utils.OverviewCacheKey(userID, month))  // Invalidate overview for the expense's month
	_ = utils.DeleteCache(ctx, rdb, utils.BreakdownCacheKey(userID, month)) // Invalidate breakdown for the expense's month
	_ = utils.DeleteCache(ctx, rdb, utils.BreakdownCacheKey(userID, "all")) // Invalidate all-time breakdown
}

// CreateExpenseHandler records a new expense for the authenticated user
func CreateExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "category, amount, occurredOn required"})
			return
		}
		// Amount must be non-negative
		if *req.Amount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be non-negative"})
			return
		}
		// Parse the expense date
		occurredOn, err := parseExpenseDate(req.OccurredOn)
		if err != nil {
			// If the date is malformed, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "occurredOn must be a valid date"})
			return
		}
		// Build the expense record, owner-scoped to the caller
		expense := domain.Expense{
			UserID:     userID.(uint), // Owning user
			Category:   req.Category,  // Category
			Amount:     *req.Amount,   // Amount
			OccurredOn: occurredOn,    // Date the expense occurred
			Note:       req.Note,      // Optional note
		}
		// Save the expense
		if err := db.Create(&expense).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create expense") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
			return
		}
		invalidateSummaryCaches(c, expense.UserID, expense.OccurredOn) // Drop stale aggregates
		// Return the created record
		c.JSON(http.StatusCreated, gin.H{"expense": expense})
	}
}

// ListExpensesHandler returns the caller's expenses, optionally restricted to
// one month window
func ListExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		query := db.Where("user_id = ?", userID) // Always owner-scoped
		// Apply the month window filter when a month is supplied
		if month := c.Query("month"); month != "" {
			year, m, err := budget.ParseMonth(month)
			if err != nil {
				// Malformed month strings are rejected, not propagated
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			start, end := budget.MonthWindow(year, m)
			query = query.Where("occurred_on >= ? AND occurred_on < ?", start, end) // Half-open [start, end)
		}
		var expenses []domain.Expense // Slice to hold expenses
		// Fetch expenses newest-first
		if err := query.Order("occurred_on desc").Find(&expenses).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"expenses": expenses}) // Return the list
	}
}

// UpdateExpenseHandler applies a partial update to an expense the caller owns
func UpdateExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var expense domain.Expense // Fetch the expense, owner-scoped
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Missing and not-owned records look identical to the caller
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expense"})
			return
		}
		previousMonth := expense.OccurredOn // Remember the old date for cache invalidation
		updates := map[string]any{}         // Column updates to apply
		if req.Category != nil {
			if *req.Category == "" {
				// Category cannot be cleared
				c.JSON(http.StatusBadRequest, gin.H{"error": "category must not be empty"})
				return
			}
			updates["category"] = *req.Category
			expense.Category = *req.Category
		}
		if req.Amount != nil {
			if *req.Amount < 0 {
				// Amount must stay non-negative
				c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be non-negative"})
				return
			}
			updates["amount"] = *req.Amount
			expense.Amount = *req.Amount
		}
		if req.OccurredOn != nil {
			occurredOn, err := parseExpenseDate(*req.OccurredOn)
			if err != nil {
				// If the date is malformed, return bad request
				c.JSON(http.StatusBadRequest, gin.H{"error": "occurredOn must be a valid date"})
				return
			}
			updates["occurred_on"] = occurredOn
			expense.OccurredOn = occurredOn
		}
		if req.Note != nil {
			updates["note"] = *req.Note
			expense.Note = *req.Note
		}
		// Persist the changes, if any
		if len(updates) > 0 {
			if err := db.Model(&expense).Updates(updates).Error; err != nil {
				// If the update fails, return internal server error
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
				return
			}
		}
		invalidateSummaryCaches(c, expense.UserID, previousMonth)      // Old month's aggregates are stale
		invalidateSummaryCaches(c, expense.UserID, expense.OccurredOn) // So are the new month's
		// Return the updated record
		c.JSON(http.StatusOK, gin.H{"expense": expense})
	}
}

// DeleteExpenseHandler removes an expense the caller owns
func DeleteExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var expense domain.Expense // Fetch first so the cache invalidation knows the month
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Missing and not-owned records look identical to the caller
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expense"})
			return
		}
		// Delete is still owner-scoped, matching the fetch above
		result := db.Where("id = ? AND user_id = ?", expense.ID, userID).Delete(&domain.Expense{})
		if result.Error != nil {
			// If the delete fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
			return
		}
		// Nothing deleted means the record vanished between fetch and delete
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,     // User ID
			"expense_id": expense.ID, // Deleted expense
		}).Info("Expense deleted") // Log deletion
		invalidateSummaryCaches(c, expense.UserID, expense.OccurredOn) // Drop stale aggregates
		c.Status(http.StatusNoContent)                                 // Nothing to return
	}
}
