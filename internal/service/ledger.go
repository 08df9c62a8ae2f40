package service

import (
	"context" // Request scope
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Input normalization
	"time"    // Timestamps

	"banking_api/internal/domain" // Domain models
	"banking_api/internal/store"  // Unit of work

	"github.com/shopspring/decimal" // Exact decimal money
)

// NewUser carries the registration data for CreateUser
type NewUser struct {
	Name         string // Display name
	Email        string // Login email, matched case-insensitively
	PasswordHash string // Already hashed by the caller
}

// Ledger owns users and their balances
type Ledger struct {
	store    store.Store
	accounts *Accounts
	now      func() time.Time
}

// NewLedger creates a ledger over st
func NewLedger(st store.Store, accounts *Accounts) *Ledger {
	return &Ledger{store: st, accounts: accounts, now: time.Now}
}

// NormalizeEmail is the canonical form used for storage and lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// accountRaceRetries bounds re-allocation when a concurrent registration
// claims the same account number between the check and the insert
const accountRaceRetries = 3

// CreateUser registers a user with a fresh account and the starting balance
func (l *Ledger) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.PasswordHash == "" {
		return nil, ErrInvalidRequest
	}
	for attempt := 0; ; attempt++ {
		created, err := l.insertUser(ctx, name, email, in.PasswordHash)
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return nil, ErrDuplicateEmail // Lost a race with the same email
		case errors.Is(err, store.ErrAccountTaken) && attempt < accountRaceRetries:
			continue // Draw again
		case errors.Is(err, store.ErrAccountTaken):
			return nil, ErrAccountNumbersExhausted
		}
		return created, err
	}
}

func (l *Ledger) insertUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	var created *domain.User
	err := l.store.Atomic(ctx, func(tx store.Tx) error {
		existing, err := l.accounts.FindByEmail(tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateEmail
		}
		account, err := l.accounts.Allocate(tx)
		if err != nil {
			return err
		}
		now := l.now()
		u := &domain.User{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Account:      account,
			Balance:      domain.StartingBalance(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateUser(u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AdjustBalance applies balance += delta inside an open unit of work.
// It does not check sufficiency; the transfer engine does that beforehand.
func (l *Ledger) AdjustBalance(tx store.Tx, userID uint, delta decimal.Decimal) error {
	err := tx.AddBalance(userID, delta.Round(2), l.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// User returns the user with the given id
func (l *Ledger) User(ctx context.Context, id uint) (*domain.User, error) {
	return l.view(ctx, func(tx store.Tx) (*domain.User, error) {
		return l.accounts.FindByID(tx, id)
	}, ErrUserNotFound)
}

// UserByEmail returns the user registered with email
func (l *Ledger) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return l.view(ctx, func(tx store.Tx) (*domain.User, error) {
		return l.accounts.FindByEmail(tx, NormalizeEmail(email))
	}, ErrUserNotFound)
}

// UserByAccount returns the holder of account
func (l *Ledger) UserByAccount(ctx context.Context, account string) (*domain.User, error) {
	if !ValidAccount(account) {
		return nil, ErrAccountNotFound
	}
	return l.view(ctx, func(tx store.Tx) (*domain.User, error) {
		return l.accounts.FindByAccount(tx, account)
	}, ErrAccountNotFound)
}

// Rename changes the display name of a user
func (l *Ledger) Rename(ctx context.Context, id uint, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	var renamed *domain.User
	err := l.store.Atomic(ctx, func(tx store.Tx) error {
		if err := tx.RenameUser(id, name, l.now()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		u, err := tx.UserByID(id)
		if err != nil {
			return err
		}
		renamed = u
		return nil
	})
	return renamed, err
}

// view runs a read-only lookup, mapping absence to missing
func (l *Ledger) view(ctx context.Context, find func(tx store.Tx) (*domain.User, error), missing error) (*domain.User, error) {
	var found *domain.User
	err := l.store.View(ctx, func(tx store.Tx) error {
		u, err := find(tx)
		if err != nil {
			return err
		}
		if u == nil {
			return missing
		}
		found = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
