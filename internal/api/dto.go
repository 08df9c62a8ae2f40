package api

import (
	"time" // Timestamps

	"banking_api/internal/domain" // Domain models
)

// UserResponse is the public view of a user
type UserResponse struct {
	ID        uint      `json:"id"`        // User ID
	Name      string    `json:"name"`      // Display name
	Email     string    `json:"email"`     // Login email
	Account   string    `json:"account"`   // 6-digit account number
	Balance   float64   `json:"balance"`   // Current balance
	CreatedAt time.Time `json:"createdAt"` // Registration time
	UpdatedAt time.Time `json:"updatedAt"` // Last change
}

// TransferResponse is the public view of a transfer
type TransferResponse struct {
	ID          uint      `json:"id"`          // Transfer ID
	FromAccount string    `json:"fromAccount"` // Source account
	ToAccount   string    `json:"toAccount"`   // Destination account
	Amount      float64   `json:"amount"`      // Amount moved
	Description string    `json:"description"` // Description or default label
	IsFavorite  bool      `json:"isFavorite"`  // Destination was a favorite when sent
	Status      string    `json:"status"`      // Always "completed"
	CreatedAt   time.Time `json:"createdAt"`   // When it happened
}

// NewUserResponse maps a user to its public view
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Account:   u.Account,
		Balance:   u.Balance.InexactFloat64(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewTransferResponse maps a transfer to its public view
func NewTransferResponse(t domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:          t.ID,
		FromAccount: t.FromAccount,
		ToAccount:   t.ToAccount,
		Amount:      t.Amount.InexactFloat64(),
		Description: t.Description,
		IsFavorite:  t.IsFavorite,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}
