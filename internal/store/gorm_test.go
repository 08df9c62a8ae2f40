package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"banking_api/internal/db"
	"banking_api/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGormStore connects to TEST_MYSQL_DSN and empties the tables
func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	gdb, err := db.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	for _, table := range []string{"favorites", "transfers", "users"} {
		require.NoError(t, gdb.Exec("DELETE FROM "+table).Error)
	}
	return NewGormStore(gdb)
}

func TestGormLookupsAndBalance(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com", "123456")

	require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
		return tx.AddBalance(u.ID, decimal.RequireFromString("-40.25"), time.Now())
	}))
	require.NoError(t, s.View(ctx, func(tx Tx) error {
		got, err := tx.UserByAccount("123456")
		require.NoError(t, err)
		assert.Equal(t, "59.75", got.Balance.StringFixed(2))
		_, err = tx.UserByEmail("missing@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
	assert.ErrorIs(t, s.Atomic(ctx, func(tx Tx) error {
		return tx.AddBalance(u.ID+1000, decimal.NewFromInt(1), time.Now())
	}), ErrNotFound)
}

func TestGormAtomicRollsBack(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "b@example.com", "234567")

	err := s.Atomic(ctx, func(tx Tx) error {
		require.NoError(t, tx.AddBalance(u.ID, decimal.NewFromInt(-100), time.Now()))
		require.NoError(t, tx.CreateTransfer(&domain.Transfer{FromAccount: "234567", ToAccount: "999999", Amount: decimal.NewFromInt(100), Status: domain.TransferStatusCompleted}))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	require.NoError(t, s.View(ctx, func(tx Tx) error {
		got, err := tx.UserByID(u.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
		transfers, err := tx.TransfersByAccount("234567")
		require.NoError(t, err)
		assert.Empty(t, transfers)
		return nil
	}))
	assert.ErrorIs(t, s.View(ctx, func(tx Tx) error {
		return tx.CreateUser(&domain.User{Email: "c@example.com", Account: "345678"})
	}), ErrReadOnly)
}

func TestGormFavoritesScopedToOwner(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "d@example.com", "456789")
	target := seedUser(t, s, "e@example.com", "567890")

	fav := &domain.Favorite{OwnerID: owner.ID, FavoriteUserID: target.ID, Account: target.Account}
	require.NoError(t, s.Atomic(ctx, func(tx Tx) error { return tx.CreateFavorite(fav) }))

	assert.ErrorIs(t, s.Atomic(ctx, func(tx Tx) error { return tx.DeleteFavorite(target.ID, fav.ID) }), ErrNotFound)
	require.NoError(t, s.Atomic(ctx, func(tx Tx) error { return tx.DeleteFavorite(owner.ID, fav.ID) }))
	require.NoError(t, s.View(ctx, func(tx Tx) error {
		favs, err := tx.FavoritesByOwner(owner.ID)
		require.NoError(t, err)
		assert.Empty(t, favs)
		return nil
	}))
}

func TestGormUniqueConflicts(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "f@example.com", "678901")
	b := seedUser(t, s, "g@example.com", "789012")

	assert.ErrorIs(t, s.Atomic(ctx, func(tx Tx) error {
		return tx.CreateUser(&domain.User{Name: "x", Email: "f@example.com", Account: "890123", PasswordHash: "x"})
	}), ErrEmailTaken)
	assert.ErrorIs(t, s.Atomic(ctx, func(tx Tx) error {
		return tx.CreateUser(&domain.User{Name: "x", Email: "h@example.com", Account: "678901", PasswordHash: "x"})
	}), ErrAccountTaken)

	fav := func() *domain.Favorite { return &domain.Favorite{OwnerID: a.ID, FavoriteUserID: b.ID, Account: b.Account} }
	require.NoError(t, s.Atomic(ctx, func(tx Tx) error { return tx.CreateFavorite(fav()) }))
	assert.ErrorIs(t, s.Atomic(ctx, func(tx Tx) error { return tx.CreateFavorite(fav()) }), ErrFavoriteExists)
}

func TestGormLockUsers(t *testing.T) {
	s := newGormStore(t)
	a := seedUser(t, s, "i@example.com", "901234")
	b := seedUser(t, s, "j@example.com", "912345")

	require.NoError(t, s.Atomic(context.Background(), func(tx Tx) error {
		locked, err := tx.LockUsers(b.ID, a.ID)
		require.NoError(t, err)
		require.Len(t, locked, 2)
		assert.Equal(t, "901234", locked[a.ID].Account)
		return nil
	}))
}

func TestMySQLErrorClassification(t *testing.T) {
	dup := fmt.Errorf("create: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'users." + domain.UserAccountIndex + "'"})
	msg, ok := duplicateKey(dup)
	assert.True(t, ok)
	assert.Contains(t, msg, domain.UserAccountIndex)

	_, ok = duplicateKey(errBoom)
	assert.False(t, ok)
	assert.Equal(t, uint16(1213), mysqlCode(&mysql.MySQLError{Number: 1213}))
	assert.Zero(t, mysqlCode(errBoom))
}
