package domain

import (
	"errors"
	"fmt"
)

// Account error kinds. Every kind maps to a distinct status at the API boundary.
var (
	// ErrLocked is returned when an account lock is not acquired within the wait bound.
	ErrLocked = errors.New("account locked")
	// ErrAccountNotFound is returned when no record exists for an account number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyClosed is returned when closing an account that is already closed.
	ErrAccountAlreadyClosed = errors.New("account already closed")
	// ErrAccountClosed is returned when a transfer touches a closed account.
	ErrAccountClosed = errors.New("account closed")
	// ErrInsufficientFunds is returned when a debit would make the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for non-positive transfer amounts or negative initial balances.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSameAccount is returned when the source and destination of a transfer are equal.
	ErrSameAccount = errors.New("cannot transfer to same account")
	// ErrInvalidAccountNumber is returned for a number that is not a well-formed account number.
	ErrInvalidAccountNumber = errors.New("invalid account number")
	// ErrInvalidKeySet is returned when a lock request has no keys or repeats a key.
	ErrInvalidKeySet = errors.New("invalid key set")
	// ErrStore wraps persistence failures.
	ErrStore = errors.New("store error")
)

// Store-level errors, mapped from the persistence engine.
var (
	// ErrAlreadyExists is returned when inserting a record whose key is taken.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrKeyTaken is returned by a creation probe that found an existing record.
	ErrKeyTaken = errors.New("account number taken")
)

// AccountError carries the account number and amount an error kind refers to.
type AccountError struct {
	Kind   error
	Number string
	Amount int64
}

func (e *AccountError) Error() string {
	switch e.Kind {
	case ErrLocked:
		return fmt.Sprintf("account %s is locked", e.Number)
	case ErrAccountNotFound:
		return fmt.Sprintf("account %s not found", e.Number)
	case ErrAccountAlreadyClosed:
		return fmt.Sprintf("account %s is closed already", e.Number)
	case ErrAccountClosed:
		return fmt.Sprintf("account %s is closed", e.Number)
	case ErrInsufficientFunds:
		return fmt.Sprintf("not enough funds to debit account %s by %d", e.Number, e.Amount)
	case ErrInvalidAmount:
		return fmt.Sprintf("invalid amount: %d", e.Amount)
	case ErrSameAccount:
		return fmt.Sprintf("cannot transfer from account %s to itself", e.Number)
	case ErrKeyTaken:
		return fmt.Sprintf("account number %s is taken", e.Number)
	case ErrInvalidAccountNumber:
		return fmt.Sprintf("invalid account number: %q", e.Number)
	}
	if e.Number != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Number)
	}
	return e.Kind.Error()
}

func (e *AccountError) Unwrap() error { return e.Kind }

// Locked reports that the lock for number was not acquired in time.
func Locked(number string) error {
	return &AccountError{Kind: ErrLocked, Number: number}
}

// NotFound reports that no account exists for number.
func NotFound(number string) error {
	return &AccountError{Kind: ErrAccountNotFound, Number: number}
}

// AlreadyClosed reports a second closure of number.
func AlreadyClosed(number string) error {
	return &AccountError{Kind: ErrAccountAlreadyClosed, Number: number}
}

// Closed reports a transfer against the closed account number.
func Closed(number string) error {
	return &AccountError{Kind: ErrAccountClosed, Number: number}
}

// InsufficientFunds reports that number cannot be debited by amount.
func InsufficientFunds(number string, amount int64) error {
	return &AccountError{Kind: ErrInsufficientFunds, Number: number, Amount: amount}
}

// InvalidAmount reports an amount outside the accepted range.
func InvalidAmount(amount int64) error {
	return &AccountError{Kind: ErrInvalidAmount, Amount: amount}
}

// SameAccount reports a transfer whose source and destination are both number.
func SameAccount(number string) error {
	return &AccountError{Kind: ErrSameAccount, Number: number}
}

// KeyTaken reports that number already belongs to an account.
func KeyTaken(number string) error {
	return &AccountError{Kind: ErrKeyTaken, Number: number}
}

// InvalidAccountNumber reports a malformed account number.
func InvalidAccountNumber(number string) error {
	return &AccountError{Kind: ErrInvalidAccountNumber, Number: number}
}

// StoreFailure wraps a persistence error so that errors.Is(err, ErrStore) holds
// while the underlying cause stays reachable.
func StoreFailure(err error) error {
	if err == nil || errors.Is(err, ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}
