package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"banking_api/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferMovesMoney(t *testing.T) {
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	tr, err := b.Transfers.Create(context.Background(), alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(100)})
	require.NoError(t, err)

	assert.Equal(t, alice.Account, tr.FromAccount)
	assert.Equal(t, bob.Account, tr.ToAccount)
	assert.True(t, tr.Amount.Equal(decimal.NewFromInt(100)))
	assert.False(t, tr.IsFavorite)
	assert.Equal(t, domain.TransferStatusCompleted, tr.Status)
	assert.Equal(t, domain.DefaultTransferDescription, tr.Description)
	assert.NotZero(t, tr.ID)
	requireBalance(t, b, alice.ID, "900")
	requireBalance(t, b, bob.ID, "1100")
}

func TestTransferScenario(t *testing.T) {
	ctx := context.Background()
	b := newBank(t)
	a, bb := register(t, b, "a"), register(t, b, "b")

	_, err := b.Transfers.Create(ctx, a.ID, TransferRequest{ToAccount: bb.Account, Amount: amt(100)})
	require.NoError(t, err)

	_, err = b.Transfers.Create(ctx, a.ID, TransferRequest{ToAccount: bb.Account, Amount: amt(6000)})
	assert.ErrorIs(t, err, ErrInsufficientFunds) // Balance is checked before the ceiling
	requireBalance(t, b, a.ID, "900")
	requireBalance(t, b, bb.ID, "1100")

	_, err = b.Favorites.Add(ctx, a.ID, bb.Account)
	require.NoError(t, err)

	_, err = b.Transfers.Create(ctx, a.ID, TransferRequest{ToAccount: bb.Account, Amount: amt(6000)})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	requireBalance(t, b, a.ID, "900")
	requireBalance(t, b, bb.ID, "1100")
}

// fund moves money from a fresh donor so large-amount rules can be exercised
func fund(t *testing.T, b *Bank, to *domain.User, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		donor := register(t, b, to.Name+"-donor-"+string(rune('a'+i)))
		_, err := b.Transfers.Create(context.Background(), donor.ID, TransferRequest{ToAccount: to.Account, Amount: amt(1000)})
		require.NoError(t, err)
	}
}

func TestFavoriteCeiling(t *testing.T) {
	ctx := context.Background()
	b := newBank(t)
	rich, stranger, friend := register(t, b, "rich"), register(t, b, "stranger"), register(t, b, "friend")
	fund(t, b, rich, 15) // 16000 total

	_, err := b.Transfers.Create(ctx, rich.ID, TransferRequest{ToAccount: stranger.Account, Amount: amt(5000)})
	require.NoError(t, err, "exactly the ceiling is allowed")

	_, err = b.Transfers.Create(ctx, rich.ID, TransferRequest{ToAccount: stranger.Account, Amount: amt(5000.01)})
	assert.ErrorIs(t, err, ErrFavoriteRequiredForLargeAmount)
	requireBalance(t, b, rich.ID, "11000")

	_, err = b.Favorites.Add(ctx, rich.ID, friend.Account)
	require.NoError(t, err)
	tr, err := b.Transfers.Create(ctx, rich.ID, TransferRequest{ToAccount: friend.Account, Amount: amt(9000.5)})
	require.NoError(t, err)
	assert.True(t, tr.IsFavorite)
	requireBalance(t, b, rich.ID, "2000.5")
	requireBalance(t, b, friend.ID, "10000.5")
}

func TestFavoriteFlagIsFrozenOnTransfer(t *testing.T) {
	ctx := context.Background()
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	fav, err := b.Favorites.Add(ctx, alice.ID, bob.Account)
	require.NoError(t, err)
	_, err = b.Transfers.Create(ctx, alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(10)})
	require.NoError(t, err)
	require.NoError(t, b.Favorites.Remove(ctx, alice.ID, fav.ID))
	_, err = b.Transfers.Create(ctx, alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(10)})
	require.NoError(t, err)

	history, err := b.Transfers.ByAccount(ctx, alice.Account)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsFavorite)
	assert.False(t, history[1].IsFavorite)
}

func TestTransferValidationOrder(t *testing.T) {
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	tests := []struct {
		name   string
		sender uint
		req    TransferRequest
		want   error
	}{
		{"missing account", alice.ID, TransferRequest{Amount: amt(10)}, ErrInvalidRequest},
		{"missing amount", alice.ID, TransferRequest{ToAccount: bob.Account}, ErrInvalidRequest},
		{"missing both from unknown sender", 999, TransferRequest{}, ErrInvalidRequest},
		{"zero amount", alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(0)}, ErrInvalidAmount},
		{"negative amount", alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(-5)}, ErrInvalidAmount},
		{"sub-cent amount", alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(0.001)}, ErrInvalidAmount},
		{"NaN amount", alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(math.NaN())}, ErrInvalidAmount},
		{"infinite amount", alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(math.Inf(1))}, ErrInvalidAmount},
		{"bad amount beats unknown sender", 999, TransferRequest{ToAccount: "000000", Amount: amt(-1)}, ErrInvalidAmount},
		{"unknown sender", 999, TransferRequest{ToAccount: bob.Account, Amount: amt(10)}, ErrSenderNotFound},
		{"unknown sender beats unknown destination", 999, TransferRequest{ToAccount: "000000", Amount: amt(10)}, ErrSenderNotFound},
		{"unknown destination", alice.ID, TransferRequest{ToAccount: "000000", Amount: amt(10)}, ErrDestinationNotFound},
		{"self transfer", alice.ID, TransferRequest{ToAccount: alice.Account, Amount: amt(10)}, ErrSelfTransferForbidden},
		{"self transfer beats insufficient funds", alice.ID, TransferRequest{ToAccount: alice.Account, Amount: amt(99999)}, ErrSelfTransferForbidden},
		{"insufficient funds", alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(1000.01)}, ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Transfers.Create(context.Background(), tt.sender, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	requireBalance(t, b, alice.ID, "1000")
	requireBalance(t, b, bob.ID, "1000")

	history, err := b.Transfers.ByAccount(context.Background(), alice.Account)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSelfTransferRejectedEvenForFavoritesOfOthers(t *testing.T) {
	ctx := context.Background()
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")
	_, err := b.Favorites.Add(ctx, bob.ID, alice.Account)
	require.NoError(t, err)

	for _, a := range []float64{0.01, 1, 5000, 5000.01} {
		_, err := b.Transfers.Create(ctx, alice.ID, TransferRequest{ToAccount: alice.Account, Amount: amt(a)})
		assert.ErrorIs(t, err, ErrSelfTransferForbidden, "amount %v", a)
	}
}

func TestTransferSpendsWholeBalance(t *testing.T) {
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	_, err := b.Transfers.Create(context.Background(), alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(1000)})
	require.NoError(t, err)
	requireBalance(t, b, alice.ID, "0")
	requireBalance(t, b, bob.ID, "2000")
}

func TestTransferKeepsDescription(t *testing.T) {
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	tr, err := b.Transfers.Create(context.Background(), alice.ID, TransferRequest{ToAccount: " " + bob.Account + " ", Amount: amt(12.345), Description: " rent "})
	require.NoError(t, err)
	assert.Equal(t, "rent", tr.Description)
	assert.True(t, tr.Amount.Equal(decimal.RequireFromString("12.35")))
	requireBalance(t, b, alice.ID, "987.65")
}

func TestBalanceConservation(t *testing.T) {
	ctx := context.Background()
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	amounts := []float64{0.01, 13.37, 250, 99.99, 1.5}
	for i, a := range amounts {
		from, to := alice, bob
		if i%2 == 1 {
			from, to = bob, alice
		}
		before := total(t, b, alice.ID, bob.ID)
		_, err := b.Transfers.Create(ctx, from.ID, TransferRequest{ToAccount: to.Account, Amount: amt(a)})
		require.NoError(t, err)
		assert.True(t, before.Equal(total(t, b, alice.ID, bob.ID)))
	}
	requireBalance(t, b, alice.ID, "861.85")
	requireBalance(t, b, bob.ID, "1138.15")
}

func total(t *testing.T, b *Bank, ids ...uint) decimal.Decimal {
	t.Helper()
	sum := decimal.Zero
	for _, id := range ids {
		u, err := b.Ledger.User(context.Background(), id)
		require.NoError(t, err)
		sum = sum.Add(u.Balance)
	}
	return sum
}

func TestHistoryByAccount(t *testing.T) {
	ctx := context.Background()
	b := newBank(t)
	alice, bob, carol := register(t, b, "alice"), register(t, b, "bob"), register(t, b, "carol")

	steps := []struct {
		from *domain.User
		to   *domain.User
	}{{alice, bob}, {bob, carol}, {carol, alice}, {alice, carol}}
	for _, s := range steps {
		_, err := b.Transfers.Create(ctx, s.from.ID, TransferRequest{ToAccount: s.to.Account, Amount: amt(1)})
		require.NoError(t, err)
	}

	history, err := b.Transfers.ByAccount(ctx, alice.Account)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []uint{1, 3, 4}, []uint{history[0].ID, history[1].ID, history[2].ID})

	mine, err := b.Transfers.ByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = b.Transfers.ByUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	b := newBank(t)
	alice, bob := register(t, b, "alice"), register(t, b, "bob")

	const n = 200
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := b.Transfers.Create(context.Background(), alice.ID, TransferRequest{ToAccount: bob.Account, Amount: amt(10)})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, succeeded)
	requireBalance(t, b, alice.ID, "0")
	requireBalance(t, b, bob.ID, "2000")
}
