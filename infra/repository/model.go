package repository

import (
	"time"

	"github.com/amirasaad/accounts/pkg/domain/account"
)

// Account represents an account record in the database.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Number    string `gorm:"type:varchar(32);uniqueIndex;not null"`
	Balance   int64  `gorm:"not null"`
	Closed    bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

func mapAccountToDomain(m *Account) *account.Account {
	return &account.Account{
		Number:    m.Number,
		Balance:   m.Balance,
		Closed:    m.Closed,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func mapAccountFromDomain(a *account.Account) *Account {
	return &Account{
		Number:    a.Number,
		Balance:   a.Balance,
		Closed:    a.Closed,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
