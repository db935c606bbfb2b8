package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseType string

const (
	// ExpenseTypeRecurring repeats per its recurrence rule.
	ExpenseTypeRecurring ExpenseType = "recurring"
	// ExpenseTypeOneTime falls due exactly once, on its due date.
	ExpenseTypeOneTime ExpenseType = "one_time"
	// ExpenseTypePlanned is a savings goal, not a billable obligation;
	// it is excluded from monthly generation and doubles as a savings pot.
	ExpenseTypePlanned ExpenseType = "planned"
)

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseTypeRecurring, ExpenseTypeOneTime, ExpenseTypePlanned:
		return true
	}
	return false
}

// ExpenseTemplate is a standing expense definition owned by one user.
// Templates are soft-deleted (IsActive=false), never removed, because
// monthly instances keep referencing them.
type ExpenseTemplate struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	SectionID *int32          `json:"sectionId,omitempty"`
	CardID    *int32          `json:"cardId,omitempty"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Type      ExpenseType     `json:"type"`
	// Recurrence is required for recurring templates, nil otherwise.
	Recurrence *RecurrenceRule `json:"recurrence,omitempty"`
	AutoDebit  bool            `json:"autoDebit"`
	// DueDate is set for one-time templates only.
	DueDate *time.Time `json:"dueDate,omitempty"`
	// NextDueDate caches the last computed due date; the calculator
	// prefers it verbatim to avoid recomputation drift.
	NextDueDate *time.Time `json:"nextDueDate,omitempty"`
	// Savings-goal fields (planned templates).
	TargetAmount *decimal.Decimal `json:"targetAmount,omitempty"`
	TargetDate   *time.Time       `json:"targetDate,omitempty"`
	SavedAmount  decimal.Decimal  `json:"savedAmount"`
	// IsFreePot marks the single undifferentiated free-savings pot,
	// created lazily on first access.
	IsFreePot bool      `json:"isFreePot"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks field-level and per-type invariants.
func (t *ExpenseTemplate) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !t.Type.Valid() {
		return ErrInvalidInput
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	switch t.Type {
	case ExpenseTypeRecurring:
		if t.Recurrence == nil {
			return ErrRecurrenceRequired
		}
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
	case ExpenseTypeOneTime:
		if t.DueDate == nil {
			return ErrDueDateRequired
		}
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
	case ExpenseTypePlanned:
		// The free pot has no target; goal pots need one.
		if !t.IsFreePot && (t.TargetAmount == nil || t.TargetAmount.LessThanOrEqual(decimal.Zero)) {
			return ErrTargetAmountRequired
		}
	}
	return nil
}

// IsPot reports whether the template can hold savings contributions.
func (t *ExpenseTemplate) IsPot() bool {
	return t.Type == ExpenseTypePlanned
}

// ExpenseTemplateRepository persists expense templates and savings pots.
type ExpenseTemplateRepository interface {
	Create(ctx context.Context, t *ExpenseTemplate) (*ExpenseTemplate, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*ExpenseTemplate, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*ExpenseTemplate, error)
	ListActiveByType(ctx context.Context, userID uuid.UUID, typ ExpenseType) ([]*ExpenseTemplate, error)
	Update(ctx context.Context, t *ExpenseTemplate) (*ExpenseTemplate, error)
	Deactivate(ctx context.Context, userID uuid.UUID, id int32) error
	// EnsureFreePot returns the user's free-savings pot, creating it on
	// first access. Concurrent first calls must converge on one row.
	EnsureFreePot(ctx context.Context, userID uuid.UUID) (*ExpenseTemplate, error)
}
