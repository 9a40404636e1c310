package ledger

import "errors"

var (
	// ErrInvalidAmount occurs when an operation is requested with a zero or
	// negative amount. No balance is touched and no record is written.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAccountNotFound indicates the referenced account number does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists indicates an account number collision on creation.
	ErrAccountExists = errors.New("account already exists")

	// ErrInsufficientFunds occurs when a debit would take the balance below
	// zero. The check is made inside the same atomic step as the write.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrContention indicates the per-account lock could not be acquired
	// within the configured bound. The operation is safe to retry.
	ErrContention = errors.New("account busy, retry")
)
