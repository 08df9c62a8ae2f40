package service

import (
	"context"
	"fmt"
	"testing"

	"banking_api/internal/domain"
	"banking_api/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBank(t *testing.T) *Bank {
	t.Helper()
	return New(store.NewMemoryStore())
}

func register(t *testing.T, b *Bank, name string) *domain.User {
	t.Helper()
	u, err := b.Ledger.CreateUser(context.Background(), NewUser{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func amt(f float64) *float64 { return &f }

func requireBalance(t *testing.T, b *Bank, id uint, want string) {
	t.Helper()
	u, err := b.Ledger.User(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.RequireFromString(want)), "balance=%s want=%s", u.Balance, want)
}

func TestCreateUser(t *testing.T) {
	b := newBank(t)
	u := register(t, b, "alice")

	assert.NotZero(t, u.ID)
	assert.True(t, ValidAccount(u.Account), "account %q", u.Account)
	assert.True(t, u.Balance.Equal(domain.StartingBalance()))
	assert.Equal(t, "alice@example.com", u.Email)

	_, err := b.Ledger.CreateUser(context.Background(), NewUser{Name: "other", Email: " ALICE@example.com ", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = b.Ledger.CreateUser(context.Background(), NewUser{Name: "", Email: "x@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAccountNumbersAreUnique(t *testing.T) {
	b := newBank(t)
	seen := make(map[string]bool)
	for i := 0; i < 300; i++ {
		u := register(t, b, fmt.Sprintf("user%d", i))
		require.Len(t, u.Account, 6)
		require.False(t, seen[u.Account], "duplicate account %s", u.Account)
		seen[u.Account] = true
	}
}

func TestAllocateRetriesOnCollision(t *testing.T) {
	draws := []string{"123456", "12", "123456", "654321"}
	next := func() string {
		d := draws[0]
		draws = draws[1:]
		return d
	}
	b := NewWithGenerator(store.NewMemoryStore(), next)

	first := register(t, b, "first")
	second := register(t, b, "second")

	assert.Equal(t, "123456", first.Account)
	assert.Equal(t, "654321", second.Account) // Malformed and taken draws skipped
}

func TestAllocateGivesUpWhenEveryDrawCollides(t *testing.T) {
	b := NewWithGenerator(store.NewMemoryStore(), func() string { return "111111" })
	register(t, b, "first")

	_, err := b.Ledger.CreateUser(context.Background(), NewUser{Name: "second", Email: "second@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrAccountNumbersExhausted)
}

func TestRandomAccountShape(t *testing.T) {
	for i := 0; i < 1000; i++ {
		assert.True(t, ValidAccount(RandomAccount()))
	}
}

func TestAdjustBalanceUnknownUser(t *testing.T) {
	st := store.NewMemoryStore()
	b := New(st)
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		return b.Ledger.AdjustBalance(tx, 42, decimal.NewFromInt(10))
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdjustBalanceAccumulates(t *testing.T) {
	st := store.NewMemoryStore()
	b := New(st)
	u := register(t, b, "alice")

	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		if err := b.Ledger.AdjustBalance(tx, u.ID, decimal.RequireFromString("-250.505")); err != nil {
			return err
		}
		return b.Ledger.AdjustBalance(tx, u.ID, decimal.RequireFromString("0.10"))
	})
	require.NoError(t, err)
	requireBalance(t, b, u.ID, "749.59")
}

func TestRename(t *testing.T) {
	b := newBank(t)
	u := register(t, b, "alice")

	renamed, err := b.Ledger.Rename(context.Background(), u.ID, "  Alice Liddell ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", renamed.Name)

	_, err = b.Ledger.Rename(context.Background(), 999, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = b.Ledger.Rename(context.Background(), u.ID, " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUserByAccount(t *testing.T) {
	b := newBank(t)
	u := register(t, b, "alice")

	got, err := b.Ledger.UserByAccount(context.Background(), u.Account)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = b.Ledger.UserByAccount(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "InsufficientFunds", KindOf(ErrInsufficientFunds))
	assert.Equal(t, "FavoriteNotFound", KindOf(fmt.Errorf("remove: %w", ErrFavoriteNotFound)))
	assert.Equal(t, "", KindOf(store.ErrNotFound))
	assert.Equal(t, "", KindOf(nil))
}
