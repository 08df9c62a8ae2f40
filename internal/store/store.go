// Package store holds users, transfers and favorites behind a unit of work.
//
// Every read-validate-mutate sequence of the bank runs inside Store.Atomic, so
// the checks and the writes they guard observe the same state. MemoryStore
// serialises sections with a mutex; GormStore maps them onto a database
// transaction with row locks.
package store

import (
	"context" // Cancellation for database-backed stores
	"errors"  // Sentinel errors
	"time"    // Mutation timestamps

	"banking_api/internal/domain" // Domain models

	"github.com/shopspring/decimal" // Exact decimal money
)

// ErrNotFound is returned by lookups that match no record
var ErrNotFound = errors.New("record not found")

// ErrReadOnly is returned when a View section attempts a write
var ErrReadOnly = errors.New("write attempted in read-only section")

// Unique constraint violations reported by inserts
var (
	ErrEmailTaken     = errors.New("email already stored")
	ErrAccountTaken   = errors.New("account number already stored")
	ErrFavoriteExists = errors.New("favorite already stored")
)

// Store runs units of work over the shared state
type Store interface {
	// Atomic runs fn as one critical section; if fn fails its writes are undone
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn with read-only access
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of primitive operations available inside a unit of work
type Tx interface {
	UserByID(id uint) (*domain.User, error)
	UserByEmail(email string) (*domain.User, error)
	UserByAccount(account string) (*domain.User, error)
	// LockUsers returns fresh copies of the users with ids, keyed by id, and
	// holds them until the section ends. Rows are locked in ascending id order.
	LockUsers(ids ...uint) (map[uint]*domain.User, error)
	// AccountExists reports whether any user holds the account number
	AccountExists(account string) (bool, error)
	// CreateUser inserts u and assigns its ID; ErrEmailTaken or ErrAccountTaken on conflicts
	CreateUser(u *domain.User) error
	// AddBalance applies balance += delta and stamps UpdatedAt
	AddBalance(id uint, delta decimal.Decimal, at time.Time) error
	// RenameUser replaces the display name and stamps UpdatedAt
	RenameUser(id uint, name string, at time.Time) error

	// CreateTransfer appends t to the history and assigns its ID
	CreateTransfer(t *domain.Transfer) error
	// TransfersByAccount returns transfers where account is source or destination, oldest first
	TransfersByAccount(account string) ([]domain.Transfer, error)

	FavoriteByAccount(ownerID uint, account string) (*domain.Favorite, error)
	// FavoriteByID matches both id and owner
	FavoriteByID(ownerID, id uint) (*domain.Favorite, error)
	// CreateFavorite inserts f and assigns its ID; ErrFavoriteExists on conflicts
	CreateFavorite(f *domain.Favorite) error
	// FavoritesByOwner returns the owner's favorites, oldest first
	FavoritesByOwner(ownerID uint) ([]domain.Favorite, error)
	// DeleteFavorite removes the favorite matching both id and owner
	DeleteFavorite(ownerID, id uint) error
}
