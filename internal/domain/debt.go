package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtTemplate is a standing debt with a monthly instalment. The
// remaining balance is a stored running total kept consistent with the
// append-only transaction log; it is the only template field the engine
// mutates outside direct user edits.
type DebtTemplate struct {
	ID               int32            `json:"id"`
	UserID           uuid.UUID        `json:"userId"`
	Name             string           `json:"name"`
	OriginalAmount   decimal.Decimal  `json:"originalAmount"`
	RemainingBalance decimal.Decimal  `json:"remainingBalance"`
	InterestRate     *decimal.Decimal `json:"interestRate,omitempty"`
	PaymentAmount    decimal.Decimal  `json:"paymentAmount"`
	Recurrence       RecurrenceRule   `json:"recurrence"`
	NextDueDate      *time.Time       `json:"nextDueDate,omitempty"`
	AutoDebit        bool             `json:"autoDebit"`
	IsActive         bool             `json:"isActive"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Validate checks field-level invariants.
func (d *DebtTemplate) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if d.OriginalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if d.RemainingBalance.IsNegative() {
		return ErrInvalidAmount
	}
	if d.PaymentAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return d.Recurrence.Validate()
}

// InstanceName returns the name used for the debt's generated monthly
// instalment instance.
func (d *DebtTemplate) InstanceName() string {
	return d.Name + " (versement)"
}

type DebtTransactionType string

const (
	// DebtTransactionPayment decreases the remaining balance.
	DebtTransactionPayment DebtTransactionType = "payment"
	// DebtTransactionCharge increases it (new spend on a revolving line).
	DebtTransactionCharge DebtTransactionType = "charge"
)

// Valid reports whether t is a known transaction type.
func (t DebtTransactionType) Valid() bool {
	return t == DebtTransactionPayment || t == DebtTransactionCharge
}

// Debt transaction sources.
const (
	DebtSourceMonthlyPayment  = "monthly_payment"
	DebtSourceExtraPayment    = "extra_payment"
	DebtSourceCharge          = "charge"
	DebtSourcePaymentReversal = "payment_reversal"
	// DebtSourceOpeningBalance records the gap between the original
	// amount and a mid-life starting balance at creation time, so replay
	// from the original amount stays true from the first row.
	DebtSourceOpeningBalance = "opening_balance"
)

// DebtTransaction is an immutable ledger entry. The stored balance must
// always equal originalAmount + charges - payments (clamped at zero on
// the payment side), re-derivable by replay.
type DebtTransaction struct {
	ID        int32               `json:"id"`
	UserID    uuid.UUID           `json:"userId"`
	DebtID    int32               `json:"debtId"`
	Type      DebtTransactionType `json:"type"`
	Amount    decimal.Decimal     `json:"amount"`
	Month     string              `json:"month"`
	Source    string              `json:"source"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NextBalance applies the transaction to a balance, clamping payments
// at zero.
func (t *DebtTransaction) NextBalance(balance decimal.Decimal) decimal.Decimal {
	if t.Type == DebtTransactionCharge {
		return balance.Add(t.Amount)
	}
	next := balance.Sub(t.Amount)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// ReplayBalance folds a transaction log (oldest first) over the original
// amount, clamping at zero on every payment.
func ReplayBalance(original decimal.Decimal, txns []*DebtTransaction) decimal.Decimal {
	balance := original
	for _, txn := range txns {
		balance = txn.NextBalance(balance)
	}
	return balance
}

// DebtRepository persists debts and their transaction log. The
// multi-row operations are atomic: a failure leaves neither the log,
// the balance, nor the linked instance half-updated. Balance movement
// is relative to the stored row inside the same database transaction,
// so concurrent writers on one debt cannot erase each other's updates.
type DebtRepository interface {
	Create(ctx context.Context, d *DebtTemplate) (*DebtTemplate, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*DebtTemplate, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*DebtTemplate, error)
	Update(ctx context.Context, d *DebtTemplate) (*DebtTemplate, error)
	Deactivate(ctx context.Context, userID uuid.UUID, id int32) error
	// ApplyTransaction appends txn and moves the stored balance by its
	// delta, clamping payments at zero; a payment reaching zero retires
	// the debt, a charge above zero reactivates it.
	ApplyTransaction(ctx context.Context, txn *DebtTransaction) (*DebtTransaction, error)
	// ListTransactions returns the debt's log, oldest first.
	ListTransactions(ctx context.Context, userID uuid.UUID, debtID int32) ([]*DebtTransaction, error)
	// SettleInstance marks a debt-linked instance paid, appends the
	// payment row and moves the balance, atomically. The instance guard
	// rejects already-paid instances.
	SettleInstance(ctx context.Context, userID uuid.UUID, instanceID int32, paidAt time.Time, txn *DebtTransaction) (*MonthlyExpenseInstance, error)
	// RevertInstance reverts a paid debt-linked instance to upcoming,
	// appends the compensating reversal row and restores the balance,
	// atomically.
	RevertInstance(ctx context.Context, userID uuid.UUID, instanceID int32, txn *DebtTransaction) (*MonthlyExpenseInstance, error)
	// SetBalance overwrites the stored balance (reconciliation repair).
	SetBalance(ctx context.Context, userID uuid.UUID, debtID int32, balance decimal.Decimal, active bool) error
}
