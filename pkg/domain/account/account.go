package account

import (
	"math"
	"time"

	"github.com/amirasaad/accounts/pkg/domain"
)

// Account is a numbered monetary account.
//
// Invariants:
// - Number is assigned once at creation and never reused.
// - Balance is in minor units and never negative.
// - Closed only moves from false to true.
type Account struct {
	Number    string    `json:"number"`
	Balance   int64     `json:"balance"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	number    string
	balance   int64
	closed    bool
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Builder stamped with the current time.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{createdAt: now, updatedAt: now}
}

// WithNumber sets the account number.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithBalance sets the initial balance.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

// WithClosed sets the closed flag.
func (b *Builder) WithClosed(closed bool) *Builder {
	b.closed = closed
	return b
}

// WithTimestamps overrides the creation and update times.
func (b *Builder) WithTimestamps(createdAt, updatedAt time.Time) *Builder {
	b.createdAt = createdAt
	b.updatedAt = updatedAt
	return b
}

// Build validates the builder state and returns the account.
func (b *Builder) Build() (*Account, error) {
	if b.balance < 0 {
		return nil, domain.InvalidAmount(b.balance)
	}
	return &Account{
		Number:    b.number,
		Balance:   b.balance,
		Closed:    b.closed,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// Clone returns an independent copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Debit removes amount from the balance.
func (a *Account) Debit(amount int64) error {
	if amount < 1 {
		return domain.InvalidAmount(amount)
	}
	if a.Closed {
		return domain.Closed(a.Number)
	}
	if a.Balance < amount {
		return domain.InsufficientFunds(a.Number, amount)
	}
	a.Balance -= amount
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount int64) error {
	if amount < 1 {
		return domain.InvalidAmount(amount)
	}
	if a.Closed {
		return domain.Closed(a.Number)
	}
	if a.Balance > math.MaxInt64-amount {
		return domain.InvalidAmount(amount)
	}
	a.Balance += amount
	return nil
}

// Close marks the account closed. Closing twice fails with AlreadyClosed.
func (a *Account) Close() error {
	if a.Closed {
		return domain.AlreadyClosed(a.Number)
	}
	a.Closed = true
	return nil
}
