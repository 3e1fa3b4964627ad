package domain

import "time"

// User Model
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`              // Primary key
	Email         string    `json:"email" gorm:"unique;not null"`      // Unique email, stored lowercase
	PasswordHash  string    `json:"-" gorm:"not null"`                 // Hashed password, never serialized
	MonthlyBudget *float64  `json:"monthlyBudget" gorm:"default:null"` // Monthly budget ceiling, nil = not set
	CreatedAt     time.Time `json:"createdAt"`                         // Timestamp of creation
}
