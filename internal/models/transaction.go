package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies the owner of an account
type ClientID uint16

// TransactionID identifies a transaction within a run
type TransactionID uint32

// Amount is an exact fixed-point monetary value
type Amount = decimal.Decimal

var (
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrMissingAmount          = errors.New("amount is required for this transaction type")
	ErrUnexpectedAmount       = errors.New("amount is not allowed for this transaction type")
	ErrNegativeAmount         = errors.New("amount must not be negative")
)

// TransactionType is the kind of a transaction record
type TransactionType int

const (
	Deposit TransactionType = iota + 1
	Withdrawal
	Dispute
	Resolve
	Chargeback
)

func (t TransactionType) String() string {
	switch t {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseTransactionType parses the lower case name used in input files.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	case "dispute":
		return Dispute, nil
	case "resolve":
		return Resolve, nil
	case "chargeback":
		return Chargeback, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
	}
}

// MovesFunds reports whether records of this type carry an amount.
// Only those records can be the target of a dispute.
func (t TransactionType) MovesFunds() bool {
	return t == Deposit || t == Withdrawal
}

// TransactionStatus tracks a record through the dispute lifecycle
type TransactionStatus int

const (
	StatusReady TransactionStatus = iota
	StatusExecuted
	StatusDisputed
	StatusChargedBack
	StatusSkipped
)

func (s TransactionStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusExecuted:
		return "executed"
	case StatusDisputed:
		return "disputed"
	case StatusChargedBack:
		return "charged_back"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ParseTransactionStatus is the inverse of String.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	for _, st := range []TransactionStatus{StatusReady, StatusExecuted, StatusDisputed, StatusChargedBack, StatusSkipped} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status: %q", s)
}

// Transaction is a single record of the input sequence.
// Dispute, Resolve and Chargeback records reference a previous record
// through TransactionID and carry no amount.
type Transaction struct {
	Type          TransactionType
	ClientID      ClientID
	TransactionID TransactionID
	Amount        *Amount // nil for dispute, resolve and chargeback
	Status        TransactionStatus
}

// NewTransaction builds a record in the Ready status.
func NewTransaction(t TransactionType, client ClientID, tx TransactionID, amount *Amount) Transaction {
	return Transaction{
		Type:          t,
		ClientID:      client,
		TransactionID: tx,
		Amount:        amount,
		Status:        StatusReady,
	}
}

// Validate checks that the amount presence matches the record type.
func (t Transaction) Validate() error {
	switch {
	case t.Type.MovesFunds():
		if t.Amount == nil {
			return fmt.Errorf("%s %d: %w", t.Type, t.TransactionID, ErrMissingAmount)
		}
		if t.Amount.IsNegative() {
			return fmt.Errorf("%s %d: %w", t.Type, t.TransactionID, ErrNegativeAmount)
		}
	case t.Type == Dispute || t.Type == Resolve || t.Type == Chargeback:
		if t.Amount != nil {
			return fmt.Errorf("%s %d: %w", t.Type, t.TransactionID, ErrUnexpectedAmount)
		}
	default:
		return fmt.Errorf("transaction %d: %w", t.TransactionID, ErrUnknownTransactionType)
	}
	return nil
}

// IsDisputing reports whether the record refers to another record rather than moving funds.
func (t Transaction) IsDisputing() bool {
	return !t.Type.MovesFunds()
}

// AmountOrZero returns the amount, or zero for records without one.
func (t Transaction) AmountOrZero() Amount {
	if t.Amount == nil {
		return decimal.Zero
	}
	return *t.Amount
}

// ValidationError reports a record that failed structural checks, with its
// position in the input.
type ValidationError struct {
	Line int
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record at line %d: %v", e.Line, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
