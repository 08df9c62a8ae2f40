package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact decimal money
)

// TransferStatusCompleted is the only status a stored transfer can have
const TransferStatusCompleted = "completed"

// DefaultTransferDescription labels transfers sent without a description
const DefaultTransferDescription = "Transfer"

// Transfer Model (immutable once recorded)
type Transfer struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	FromAccount string          `gorm:"size:6;index;not null" json:"fromAccount"`  // Source account number
	ToAccount   string          `gorm:"size:6;index;not null" json:"toAccount"`    // Destination account number
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"` // Always > 0
	Description string          `gorm:"not null" json:"description"`               // Free text, defaulted when empty
	IsFavorite  bool            `gorm:"not null" json:"isFavorite"`                // Destination was a favorite of the sender when validated
	Status      string          `gorm:"size:16;not null" json:"status"`            // Always "completed"
	CreatedAt   time.Time       `json:"createdAt"`                                 // Creation timestamp
}
