package service

import (
	"context" // Request scope
	"fmt"     // Error wrapping
	"math"    // Finite checks on raw amounts
	"strings" // Description cleanup
	"time"    // Timestamps

	"banking_api/internal/domain" // Domain models
	"banking_api/internal/store"  // Unit of work

	"github.com/shopspring/decimal" // Exact decimal money
)

// favoriteCeiling is the largest amount a non-favorite recipient can receive in one transfer
var favoriteCeiling = decimal.NewFromInt(5000)

// TransferRequest is the caller-supplied part of a transfer
type TransferRequest struct {
	ToAccount   string   // Destination account number
	Amount      *float64 // Nil when the caller omitted it
	Description string   // Optional
}

// Transfers moves money between accounts and keeps the history
type Transfers struct {
	store     store.Store
	accounts  *Accounts
	ledger    *Ledger
	favorites *Favorites
	now       func() time.Time
}

// NewTransfers wires the engine to its collaborators
func NewTransfers(st store.Store, accounts *Accounts, ledger *Ledger, favorites *Favorites) *Transfers {
	return &Transfers{store: st, accounts: accounts, ledger: ledger, favorites: favorites, now: time.Now}
}

// ParseAmount rounds a raw amount to cents and rejects non-positive or non-finite values
func ParseAmount(raw float64) (decimal.Decimal, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	amount := decimal.NewFromFloat(raw).Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// Create validates and executes a transfer from senderID. The first failing
// check wins and leaves every balance untouched.
func (t *Transfers) Create(ctx context.Context, senderID uint, req TransferRequest) (*domain.Transfer, error) {
	if strings.TrimSpace(req.ToAccount) == "" || req.Amount == nil {
		return nil, ErrInvalidRequest
	}
	amount, err := ParseAmount(*req.Amount)
	if err != nil {
		return nil, err
	}
	toAccount := strings.TrimSpace(req.ToAccount)
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = domain.DefaultTransferDescription
	}

	var recorded *domain.Transfer
	// Validation, both balance mutations and the history append share one unit of work
	err = t.store.Atomic(ctx, func(tx store.Tx) error {
		sender, err := t.accounts.FindByID(tx, senderID)
		if err != nil {
			return err
		}
		if sender == nil {
			return ErrSenderNotFound
		}
		recipient, err := t.accounts.FindByAccount(tx, toAccount)
		if err != nil {
			return err
		}
		if recipient == nil {
			return ErrDestinationNotFound
		}
		if sender.Account == toAccount {
			return ErrSelfTransferForbidden
		}
		// Re-read both parties under row locks before checking the balance
		locked, err := tx.LockUsers(sender.ID, recipient.ID)
		if err != nil {
			return err
		}
		sender = locked[sender.ID]
		if sender == nil {
			return ErrSenderNotFound
		}
		if locked[recipient.ID] == nil {
			return ErrDestinationNotFound
		}
		if sender.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		isFavorite, err := t.favorites.IsFavorite(tx, sender.ID, toAccount)
		if err != nil {
			return err
		}
		if amount.GreaterThan(favoriteCeiling) && !isFavorite {
			return ErrFavoriteRequiredForLargeAmount
		}

		if err := t.ledger.AdjustBalance(tx, sender.ID, amount.Neg()); err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}
		if err := t.ledger.AdjustBalance(tx, recipient.ID, amount); err != nil {
			return fmt.Errorf("credit recipient: %w", err)
		}
		tr := &domain.Transfer{
			FromAccount: sender.Account,
			ToAccount:   toAccount,
			Amount:      amount,
			Description: description,
			IsFavorite:  isFavorite, // Status at validation time
			Status:      domain.TransferStatusCompleted,
			CreatedAt:   t.now(),
		}
		if err := tx.CreateTransfer(tr); err != nil {
			return fmt.Errorf("record transfer: %w", err)
		}
		recorded = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// ByAccount returns every transfer touching account in insertion order
func (t *Transfers) ByAccount(ctx context.Context, account string) ([]domain.Transfer, error) {
	var out []domain.Transfer
	err := t.store.View(ctx, func(tx store.Tx) error {
		transfers, err := tx.TransfersByAccount(account)
		if err != nil {
			return err
		}
		out = transfers
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ByUser returns the history of the user's own account
func (t *Transfers) ByUser(ctx context.Context, userID uint) ([]domain.Transfer, error) {
	u, err := t.ledger.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.ByAccount(ctx, u.Account)
}
