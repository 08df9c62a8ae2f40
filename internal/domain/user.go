package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact decimal money
)

// Unique index names, matched when translating duplicate-key errors
const (
	UserEmailIndex   = "idx_users_email"
	UserAccountIndex = "idx_users_account"
)

// StartingBalance is credited to every account at registration
func StartingBalance() decimal.Decimal {
	return decimal.NewFromInt(1000)
}

// User Model (a user owns exactly one account)
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                                         // Primary key
	Name         string          `gorm:"not null" json:"name"`                                         // Display name
	Email        string          `gorm:"size:191;uniqueIndex:idx_users_email;not null" json:"email"`   // Unique, lower-cased email
	PasswordHash string          `gorm:"not null" json:"-"`                                            // bcrypt hash, never serialized
	Account      string          `gorm:"size:6;uniqueIndex:idx_users_account;not null" json:"account"` // Unique 6-digit account number
	Balance      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance"`                   // Current balance
	CreatedAt    time.Time       `json:"createdAt"`                                                    // Creation timestamp
	UpdatedAt    time.Time       `json:"updatedAt"`                                                    // Last balance or profile change
}
