package account

import (
	"time"

	"github.com/amirasaad/accounts/pkg/domain/account"
	accountsvc "github.com/amirasaad/accounts/pkg/service/account"
)

//revive:disable

// CreateAccountRequest represents the request body for creating a new account.
type CreateAccountRequest struct {
	InitialAmount int64 `json:"initial_amount" validate:"gte=0"`
}

// TransferRequest represents the request body for transferring funds between accounts.
type TransferRequest struct {
	Source      string `json:"source" validate:"required,numeric,max=32"`
	Destination string `json:"destination" validate:"required,numeric,max=32"`
	Amount      int64  `json:"amount" validate:"required,gte=1"`
}

// AccountDTO is the API response representation of an account.
type AccountDTO struct {
	Number    string    `json:"number"`
	Balance   int64     `json:"balance"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransferDTO is the API response representation of a completed transfer.
type TransferDTO struct {
	Source      AccountDTO `json:"source"`
	Destination AccountDTO `json:"destination"`
	Amount      int64      `json:"amount"`
}

//revive:enable

// ToAccountDTO maps a domain account to its API representation.
func ToAccountDTO(a *account.Account) AccountDTO {
	return AccountDTO{
		Number:    a.Number,
		Balance:   a.Balance,
		Closed:    a.Closed,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ToTransferDTO maps a transfer result to its API representation.
func ToTransferDTO(r *accountsvc.TransferResult, amount int64) TransferDTO {
	return TransferDTO{
		Source:      ToAccountDTO(r.Source),
		Destination: ToAccountDTO(r.Destination),
		Amount:      amount,
	}
}
