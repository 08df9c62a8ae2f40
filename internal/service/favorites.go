package service

import (
	"context" // Request scope
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"time"    // Timestamps

	"banking_api/internal/domain" // Domain models
	"banking_api/internal/store"  // Unit of work
)

// Favorites records which accounts a user trusts for large transfers
type Favorites struct {
	store    store.Store
	accounts *Accounts
	now      func() time.Time
}

// NewFavorites creates a registry over st
func NewFavorites(st store.Store, accounts *Accounts) *Favorites {
	return &Favorites{store: st, accounts: accounts, now: time.Now}
}

// Add saves targetAccount as a favorite of ownerID
func (f *Favorites) Add(ctx context.Context, ownerID uint, targetAccount string) (*domain.FavoriteEntry, error) {
	var entry *domain.FavoriteEntry
	err := f.store.Atomic(ctx, func(tx store.Tx) error {
		target, err := f.accounts.FindByAccount(tx, targetAccount)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrAccountNotFound
		}
		owner, err := f.accounts.FindByID(tx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return ErrUserNotFound
		}
		if owner.Account == targetAccount {
			return ErrSelfFavoriteForbidden
		}
		ok, err := f.IsFavorite(tx, ownerID, targetAccount)
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyFavorite
		}
		fav := &domain.Favorite{
			OwnerID:        ownerID,
			FavoriteUserID: target.ID,
			Account:        targetAccount,
			CreatedAt:      f.now(),
		}
		if err := tx.CreateFavorite(fav); err != nil {
			if errors.Is(err, store.ErrFavoriteExists) {
				return ErrAlreadyFavorite // Lost a race with the same pair
			}
			return fmt.Errorf("create favorite: %w", err)
		}
		entry = &domain.FavoriteEntry{ID: fav.ID, Account: fav.Account, Name: target.Name, CreatedAt: fav.CreatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// IsFavorite reports whether ownerID has saved targetAccount, inside an open unit of work
func (f *Favorites) IsFavorite(tx store.Tx, ownerID uint, targetAccount string) (bool, error) {
	_, err := tx.FavoriteByAccount(ownerID, targetAccount)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the owner's favorites joined with each target's current name
func (f *Favorites) List(ctx context.Context, ownerID uint) ([]domain.FavoriteEntry, error) {
	var entries []domain.FavoriteEntry
	err := f.store.View(ctx, func(tx store.Tx) error {
		favs, err := tx.FavoritesByOwner(ownerID)
		if err != nil {
			return err
		}
		entries = make([]domain.FavoriteEntry, 0, len(favs))
		for _, fav := range favs {
			entry := domain.FavoriteEntry{ID: fav.ID, Account: fav.Account, CreatedAt: fav.CreatedAt}
			target, err := f.accounts.FindByID(tx, fav.FavoriteUserID)
			if err != nil {
				return err
			}
			if target != nil {
				entry.Name = target.Name // Live join, never cached
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes a favorite; ids owned by someone else fail like unknown ids
func (f *Favorites) Remove(ctx context.Context, ownerID, favoriteID uint) error {
	return f.store.Atomic(ctx, func(tx store.Tx) error {
		// Lookup and delete both match the owner
		if _, err := tx.FavoriteByID(ownerID, favoriteID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrFavoriteNotFound
			}
			return err
		}
		err := tx.DeleteFavorite(ownerID, favoriteID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	})
}
