package service

import "errors" // Sentinel errors

// Error kinds returned by the core. Callers compare with errors.Is.
var (
	ErrInvalidRequest                 = errors.New("required fields are missing")
	ErrInvalidAmount                  = errors.New("amount must be a number greater than zero")
	ErrSenderNotFound                 = errors.New("sender not found")
	ErrDestinationNotFound            = errors.New("destination account not found")
	ErrSelfTransferForbidden          = errors.New("cannot transfer to your own account")
	ErrInsufficientFunds              = errors.New("insufficient funds")
	ErrFavoriteRequiredForLargeAmount = errors.New("transfers above 5000.00 require the recipient to be a favorite")

	ErrAccountNotFound       = errors.New("account not found")
	ErrSelfFavoriteForbidden = errors.New("cannot add your own account as a favorite")
	ErrAlreadyFavorite       = errors.New("account is already a favorite")
	ErrFavoriteNotFound      = errors.New("favorite not found")

	ErrDuplicateEmail          = errors.New("email already registered")
	ErrUserNotFound            = errors.New("user not found")
	ErrAccountNumbersExhausted = errors.New("could not allocate a free account number")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidRequest, "InvalidRequest"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrSenderNotFound, "SenderNotFound"},
	{ErrDestinationNotFound, "DestinationNotFound"},
	{ErrSelfTransferForbidden, "SelfTransferForbidden"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrFavoriteRequiredForLargeAmount, "FavoriteRequiredForLargeAmount"},
	{ErrAccountNotFound, "AccountNotFound"},
	{ErrSelfFavoriteForbidden, "SelfFavoriteForbidden"},
	{ErrAlreadyFavorite, "AlreadyFavorite"},
	{ErrFavoriteNotFound, "FavoriteNotFound"},
	{ErrDuplicateEmail, "DuplicateEmail"},
	{ErrUserNotFound, "UserNotFound"},
	{ErrAccountNumbersExhausted, "AccountNumbersExhausted"},
}

// KindOf names the error kind of err, or "" for errors outside the taxonomy
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
