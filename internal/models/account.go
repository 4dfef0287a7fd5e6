package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned when a withdrawal exceeds the available balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// AccountStatus tells whether an account still accepts operations
type AccountStatus int

const (
	Operational AccountStatus = iota
	Frozen
)

func (s AccountStatus) String() string {
	if s == Frozen {
		return "frozen"
	}
	return "operational"
}

// Account holds the balance of a single client.
// Total is always Available + Held.
type Account struct {
	ClientID  ClientID
	Available Amount // funds the client can use
	Held      Amount // funds on hold until a dispute is settled
	Status    AccountStatus
}

// NewAccount returns an operational account with zero balances.
func NewAccount(client ClientID) Account {
	return Account{
		ClientID:  client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Status:    Operational,
	}
}

func (a *Account) Deposit(amount Amount) {
	a.Available = a.Available.Add(amount)
}

// Withdraw removes funds from the available balance, leaving the account
// untouched when there are not enough.
func (a *Account) Withdraw(amount Amount) error {
	if a.Available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Available = a.Available.Sub(amount)
	return nil
}

// Hold moves funds from available to held. Available may go negative when
// the disputed funds were already spent.
func (a *Account) Hold(amount Amount) {
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
}

// Release moves held funds back to available.
func (a *Account) Release(amount Amount) {
	a.Available = a.Available.Add(amount)
	a.Held = a.Held.Sub(amount)
}

// Chargeback forfeits held funds.
func (a *Account) Chargeback(amount Amount) {
	a.Held = a.Held.Sub(amount)
}

func (a *Account) Freeze()   { a.Status = Frozen }
func (a *Account) Unfreeze() { a.Status = Operational }

func (a Account) Frozen() bool { return a.Status == Frozen }

func (a Account) Total() Amount {
	return a.Available.Add(a.Held)
}
