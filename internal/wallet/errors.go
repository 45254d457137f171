package wallet

import (
	"errors"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/snapshot"
)

var (
	// ErrValidation indicates malformed or missing input (empty required
	// field, short PIN, mismatched PIN confirmation).
	ErrValidation = errors.New("invalid input")

	// ErrDuplicatePhone re-exports the store's uniqueness violation.
	ErrDuplicatePhone = account.ErrDuplicatePhone

	// ErrInvalidCredentials covers an unknown phone at login as well as a
	// PIN mismatch at login or operation confirmation.
	ErrInvalidCredentials = errors.New("invalid phone number or PIN")

	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds indicates the debit would push the balance below
	// the minimum balance floor.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrRecipientNotFound indicates no account matches the recipient phone.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrSelfTransfer indicates the recipient phone is the sender's own.
	ErrSelfTransfer = errors.New("cannot transfer to yourself")

	// ErrPersistence re-exports the snapshot write failure. It is reported
	// after the in-memory mutation has committed.
	ErrPersistence = snapshot.ErrPersistence
)
