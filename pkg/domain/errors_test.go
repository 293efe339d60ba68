package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{"locked", Locked("42"), ErrLocked, "account 42 is locked"},
		{"not found", NotFound("42"), ErrAccountNotFound, "account 42 not found"},
		{"already closed", AlreadyClosed("42"), ErrAccountAlreadyClosed, "account 42 is closed already"},
		{"closed", Closed("42"), ErrAccountClosed, "account 42 is closed"},
		{"insufficient", InsufficientFunds("42", 101), ErrInsufficientFunds, "not enough funds to debit account 42 by 101"},
		{"invalid amount", InvalidAmount(-1), ErrInvalidAmount, "invalid amount: -1"},
		{"same account", SameAccount("42"), ErrSameAccount, "cannot transfer from account 42 to itself"},
		{"taken", KeyTaken("42"), ErrKeyTaken, "account number 42 is taken"},
		{"malformed number", InvalidAccountNumber("4x"), ErrInvalidAccountNumber, `invalid account number: "4x"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
			assert.ErrorIs(t, tc.err, tc.kind)
		})
	}
}

func TestAccountError_As(t *testing.T) {
	err := InsufficientFunds("0001", 7)
	var accErr *AccountError
	if assert.True(t, errors.As(err, &accErr)) {
		assert.Equal(t, "0001", accErr.Number)
		assert.Equal(t, int64(7), accErr.Amount)
	}
}

func TestStoreFailure(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreFailure(cause)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, err, StoreFailure(err))
	assert.NoError(t, StoreFailure(nil))
}
