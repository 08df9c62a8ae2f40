package domain

import "time" // Timestamps

// Favorite Model, unique per (OwnerID, Account)
type Favorite struct {
	ID             uint      `gorm:"primaryKey" json:"id"`                                                  // Primary key
	OwnerID        uint      `gorm:"not null;uniqueIndex:idx_favorite_owner_account" json:"-"`              // User who saved the favorite
	FavoriteUserID uint      `gorm:"not null" json:"-"`                                                     // Resolved target user, used for name lookups
	Account        string    `gorm:"size:6;not null;uniqueIndex:idx_favorite_owner_account" json:"account"` // Target account number
	CreatedAt      time.Time `json:"createdAt"`                                                             // Creation timestamp
}

// FavoriteEntry is a favorite joined with the target's current display name
type FavoriteEntry struct {
	ID        uint      `json:"id"`             // Favorite ID
	Account   string    `json:"account"`        // Target account number
	Name      string    `json:"name,omitempty"` // Target's name at read time
	CreatedAt time.Time `json:"createdAt"`      // When the favorite was added
}
