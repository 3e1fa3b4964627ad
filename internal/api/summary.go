package api

import (
	"budget_buddy/internal/budget" // Month window and overview calculations
	"budget_buddy/internal/domain" // Importing domain models
	"budget_buddy/internal/utils"  // Utility functions
	"context"                      // Context for Redis operations
	"net/http"                     // HTTP status codes
	"time"                         // Current time for month defaulting

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// OverviewResponse is the month-scoped budget summary returned to the caller
type OverviewResponse struct {
	Month      string   `json:"month"`      // Resolved YYYY-MM month
	Total      float64  `json:"total"`      // Sum of the month's expenses
	Budget     float64  `json:"budget"`     // Configured budget, 0 when unset
	Remaining  *float64 `json:"remaining"`  // Budget minus total, null when no budget
	Percentage int      `json:"percentage"` // Rounded percent of budget consumed
	Alert      *string  `json:"alert"`      // null, WARNING or OVERLIMIT
}

// CategoryTotal is one row of the category breakdown
type CategoryTotal struct {
	Category string  `json:"category"` // Category name
	Total    float64 `json:"total"`    // Summed amount for the category
}

// OverviewHandler computes the budget overview for one month. The month
// defaults to the current UTC calendar month when not supplied.
func OverviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Resolve the target month
		month := c.Query("month")
		if month == "" {
			month = budget.CurrentMonth(time.Now()) // Default to the current UTC month
		}
		year, m, err := budget.ParseMonth(month)
		if err != nil {
			// Malformed month strings are rejected, not propagated
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := context.Background()                              // Context for Redis operations
		cacheKey := utils.OverviewCacheKey(userID.(uint), month) // Cache key for this user and month
		var cached OverviewResponse                              // Cached overview, if any
		found, cacheErr := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if cacheErr == nil && found {
			c.JSON(http.StatusOK, gin.H{"overview": cached, "cached": true})
			return
		}
		start, end := budget.MonthWindow(year, m) // Half-open [start, end) window
		var total float64                         // Sum of the month's expenses
		// Absence of matching records yields total 0, not an error
		if err := db.Model(&domain.Expense{}).
			Where("user_id = ? AND occurred_on >= ? AND occurred_on < ?", userID, start, end).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			// If the aggregate fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute overview"})
			return
		}
		var user domain.User // Fetch the user's budget ceiling
		if err := db.First(&user, userID).Error; err != nil {
			// Token was valid but the account no longer exists
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Derive remaining, percentage and alert level
		ov := budget.ComputeOverview(total, user.MonthlyBudget)
		resp := OverviewResponse{
			Month:      month,         // Resolved month
			Total:      ov.Total,      // Month total
			Budget:     ov.Budget,     // Configured budget
			Remaining:  ov.Remaining,  // Remaining budget
			Percentage: ov.Percentage, // Percent consumed
			Alert:      ov.Alert,      // Alert level
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)          // Cache the overview
		c.JSON(http.StatusOK, gin.H{"overview": resp, "cached": false}) // Return the overview
	}
}

// CategoryBreakdownHandler groups the caller's expenses by category and sums
// each group. With a month parameter only that month window counts; without
// one the breakdown is all-time.
func CategoryBreakdownHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		month := c.Query("month")                                         // Optional month filter
		query := db.Model(&domain.Expense{}).Where("user_id = ?", userID) // Always owner-scoped
		cacheMonth := "all"                                               // Cache key segment for the all-time breakdown
		if month != "" {
			year, m, err := budget.ParseMonth(month)
			if err != nil {
				// Malformed month strings are rejected, not propagated
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			start, end := budget.MonthWindow(year, m)
			query = query.Where("occurred_on >= ? AND occurred_on < ?", start, end) // Half-open [start, end)
			cacheMonth = month
		}
		ctx := context.Background()                                    // Context for Redis operations
		cacheKey := utils.BreakdownCacheKey(userID.(uint), cacheMonth) // Cache key for this user and window
		var cached []CategoryTotal                                     // Cached breakdown, if any
		found, cacheErr := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if cacheErr == nil && found {
			c.JSON(http.StatusOK, gin.H{"summary": cached, "cached": true})
			return
		}
		summary := []CategoryTotal{} // Empty, not null, when nothing matches
		// Group by category, sum amounts, sort by category name ascending
		if err := query.
			Select("category, SUM(amount) AS total").
			Group("category").
			Order("category asc").
			Scan(&summary).Error; err != nil {
			// If the aggregate fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, summary, cacheTTL)         // Cache the breakdown
		c.JSON(http.StatusOK, gin.H{"summary": summary, "cached": false}) // Return the breakdown
	}
}
