// Package service implements the bank's business rules: account allocation,
// the balance ledger, the favorites registry and the transfer engine.
//
// Callers pass an already-authenticated user id; nothing here authenticates.
package service

import "banking_api/internal/store" // Unit of work

// Bank groups the services that share one store
type Bank struct {
	Accounts  *Accounts
	Ledger    *Ledger
	Favorites *Favorites
	Transfers *Transfers
}

// New wires every service over st with random account numbers
func New(st store.Store) *Bank {
	return NewWithGenerator(st, nil)
}

// NewWithGenerator is New with a custom account number source
func NewWithGenerator(st store.Store, draw AccountGenerator) *Bank {
	accounts := NewAccounts(draw)
	ledger := NewLedger(st, accounts)
	favorites := NewFavorites(st, accounts)
	return &Bank{
		Accounts:  accounts,
		Ledger:    ledger,
		Favorites: favorites,
		Transfers: NewTransfers(st, accounts, ledger, favorites),
	}
}
