package api

import (
	"budget_buddy/internal/budget" // Tomorrow-day calculation
	"budget_buddy/internal/domain" // Importing domain models
	"net/http"                     // HTTP status codes
	"time"                         // Current time for the due-tomorrow scan

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateCardRequest represents a card registration request
type CreateCardRequest struct {
	CardName   string `json:"cardName" binding:"required"`   // Display name must be provided
	CardNumber string `json:"cardNumber" binding:"required"` // Submitted number, only its last 4 characters are kept
	PaymentDay *int   `json:"paymentDay" binding:"required"` // Payment due day must be provided
	Note       string `json:"note"`                          // Optional note
}

// last4 keeps only the trailing four characters of a submitted card number.
// The full number is never persisted.
func last4(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}

// CreateCardHandler registers a payment card for the authenticated user
func CreateCardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateCardRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "cardName, cardNumber, paymentDay required"})
			return
		}
		// Payment day must be a real day-of-month number
		if *req.PaymentDay < 1 || *req.PaymentDay > 31 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paymentDay must be between 1 and 31"})
			return
		}
		// Build the card record with only the number's last 4 characters
		card := domain.Card{
			UserID:          userID.(uint),         // Owning user
			CardName:        req.CardName,          // Display name
			CardNumberLast4: last4(req.CardNumber), // Derived last 4, full number discarded
			PaymentDay:      *req.PaymentDay,       // Payment due day
			Note:            req.Note,              // Optional note
		}
		// Save the card
		if err := db.Create(&card).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create card") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
			return
		}
		// Return the created record
		c.JSON(http.StatusCreated, gin.H{"card": card})
	}
}

// ListCardsHandler returns the caller's cards, newest first
func ListCardsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var cards []domain.Card // Slice to hold cards
		// Fetch the caller's cards, newest first
		if err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&cards).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cards": cards}) // Return the list
	}
}

// CardsDueTomorrowHandler returns the caller's cards whose payment day falls
// on tomorrow's calendar day. Tomorrow is the process-local wall clock plus
// one day; payment days 29-31 never match in months too short to reach them.
func CardsDueTomorrowHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		tomorrowDay := budget.TomorrowDay(time.Now()) // Day-of-month of tomorrow, local time
		cards := []domain.Card{}                      // Empty, not null, when nothing matches
		// Fetch cards due on that day; no match is an empty list, never an error
		if err := db.Where("user_id = ? AND payment_day = ?", userID, tomorrowDay).Find(&cards).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
			return
		}
		// Return matching cards along with the resolved day
		c.JSON(http.StatusOK, gin.H{"cards": cards, "tomorrowDay": tomorrowDay})
	}
}

// DeleteCardHandler removes a card the caller owns
func DeleteCardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Delete is owner-scoped, so another user's card id deletes nothing
		result := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&domain.Card{})
		if result.Error != nil {
			// If the delete fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
			return
		}
		// Nothing deleted means not found (or not owned, which looks the same)
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"user_id": userID,        // User ID
			"card_id": c.Param("id"), // Deleted card
		}).Info("Card deleted") // Log deletion
		c.Status(http.StatusNoContent) // Nothing to return
	}
}
