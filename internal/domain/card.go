package domain

import "time"

// Card Model
type Card struct {
	ID              uint      `json:"id" gorm:"primaryKey"`            // Primary key
	UserID          uint      `json:"userId" gorm:"index"`             // Foreign key to the owning User
	CardName        string    `json:"cardName" gorm:"not null"`        // Display name, e.g. "RBC Visa"
	CardNumberLast4 string    `json:"cardNumberLast4" gorm:"not null"` // Last 4 digits only, full number never stored
	PaymentDay      int       `json:"paymentDay" gorm:"not null"`      // Day of month payment is due, 1-31
	Note            string    `json:"note"`                            // Optional note
	CreatedAt       time.Time `json:"createdAt"`                       // Timestamp of creation
}
