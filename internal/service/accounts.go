package service

import (
	"errors"       // Error inspection
	"fmt"          // Formatting account numbers
	"math/rand" // Account number draws
	"regexp"       // Account number shape

	"banking_api/internal/domain" // Domain models
	"banking_api/internal/store"  // Unit of work
)

// maxAccountDraws bounds the collision retry loop
const maxAccountDraws = 1000

var accountPattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidAccount reports whether s has the 6-digit account shape
func ValidAccount(s string) bool {
	return accountPattern.MatchString(s)
}

// AccountGenerator draws candidate account numbers
type AccountGenerator func() string

// RandomAccount draws a uniformly random number in 100000..999999
func RandomAccount() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// Accounts allocates account numbers and resolves lookups
type Accounts struct {
	draw AccountGenerator
}

// NewAccounts builds an allocator; a nil generator uses RandomAccount
func NewAccounts(draw AccountGenerator) *Accounts {
	if draw == nil {
		draw = RandomAccount
	}
	return &Accounts{draw: draw}
}

// Allocate returns a 6-digit account number not held by anyone in tx
func (a *Accounts) Allocate(tx store.Tx) (string, error) {
	for i := 0; i < maxAccountDraws; i++ {
		candidate := a.draw()
		if !ValidAccount(candidate) {
			continue // Never hand out a malformed number
		}
		taken, err := tx.AccountExists(candidate)
		if err != nil {
			return "", fmt.Errorf("check account %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrAccountNumbersExhausted
}

// FindByID returns (nil, nil) when no user has the id
func (a *Accounts) FindByID(tx store.Tx, id uint) (*domain.User, error) {
	return absentAsNil(tx.UserByID(id))
}

// FindByEmail returns (nil, nil) when no user has the email
func (a *Accounts) FindByEmail(tx store.Tx, email string) (*domain.User, error) {
	return absentAsNil(tx.UserByEmail(email))
}

// FindByAccount returns (nil, nil) when no user holds the account
func (a *Accounts) FindByAccount(tx store.Tx, account string) (*domain.User, error) {
	return absentAsNil(tx.UserByAccount(account))
}

// absentAsNil lets callers decide whether a missing record is an error
func absentAsNil(u *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
