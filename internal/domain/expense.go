package domain

import "time"

// Expense Model
type Expense struct {
	ID         uint      `json:"id" gorm:"primaryKey"`     // Primary key
	UserID     uint      `json:"userId" gorm:"index"`      // Foreign key to the owning User
	Category   string    `json:"category" gorm:"not null"` // Free-form category name
	Amount     float64   `json:"amount" gorm:"not null"`   // Spend amount, non-negative
	OccurredOn time.Time `json:"occurredOn" gorm:"index"`  // Calendar date the expense occurred
	Note       string    `json:"note"`                     // Optional note
	CreatedAt  time.Time `json:"createdAt"`                // Timestamp of creation
}
