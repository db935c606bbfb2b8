package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseStatus string

const (
	ExpenseStatusUpcoming ExpenseStatus = "upcoming"
	ExpenseStatusPaid     ExpenseStatus = "paid"
	ExpenseStatusOverdue  ExpenseStatus = "overdue"
	ExpenseStatusDeferred ExpenseStatus = "deferred"
)

// InstanceOrigin tags where a monthly expense instance came from, so the
// templateless case is handled exhaustively instead of by null checks.
type InstanceOrigin string

const (
	OriginTemplate InstanceOrigin = "template"
	OriginDebt     InstanceOrigin = "debt"
	OriginAdhoc    InstanceOrigin = "adhoc"
)

// MonthlyExpenseInstance is one month-scoped occurrence of an obligation:
// "the February bill for Netflix". At most one instance exists per
// (template, month) and per (debt, month); that uniqueness is the
// idempotence key for generation.
type MonthlyExpenseInstance struct {
	ID         int32     `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	TemplateID *int32    `json:"templateId,omitempty"`
	DebtID     *int32    `json:"debtId,omitempty"`
	SectionID  *int32    `json:"sectionId,omitempty"`
	CardID     *int32    `json:"cardId,omitempty"`
	// Month is the "YYYY-MM" partition key.
	Month       string          `json:"month"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"dueDate"`
	Status      ExpenseStatus   `json:"status"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
	AutoCharged bool            `json:"autoCharged"`
	// IsPlanned is false for ad-hoc, unplanned spend.
	IsPlanned bool      `json:"isPlanned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Origin returns the instance's provenance tag.
func (i *MonthlyExpenseInstance) Origin() InstanceOrigin {
	switch {
	case i.DebtID != nil:
		return OriginDebt
	case i.TemplateID != nil:
		return OriginTemplate
	default:
		return OriginAdhoc
	}
}

// ApplyClock advances the instance per wall-clock time and reports
// whether it changed. Only UPCOMING instances move: auto-charged ones
// settle once the due date is reached, recorded as paid exactly on
// schedule (paidAt = due date, not today); everything else turns OVERDUE
// the day after falling due. Repeated application is a no-op because the
// UPCOMING guard no longer holds.
func (i *MonthlyExpenseInstance) ApplyClock(today time.Time) bool {
	if i.Status != ExpenseStatusUpcoming {
		return false
	}
	if i.AutoCharged {
		if !i.DueDate.After(today) {
			due := i.DueDate
			i.Status = ExpenseStatusPaid
			i.PaidAt = &due
			return true
		}
		return false
	}
	if i.DueDate.Before(today) {
		i.Status = ExpenseStatusOverdue
		return true
	}
	return false
}

// CanMarkDeferred reports whether a manual defer is legal. A paid
// instance must be reverted to upcoming first.
func (i *MonthlyExpenseInstance) CanMarkDeferred() bool {
	return i.Status != ExpenseStatusPaid
}

type IncomeStatus string

const (
	IncomeStatusExpected IncomeStatus = "expected"
	IncomeStatusReceived IncomeStatus = "received"
	IncomeStatusPartial  IncomeStatus = "partial"
	IncomeStatusMissed   IncomeStatus = "missed"
)

// MonthlyIncomeInstance is one month-scoped income occurrence. Unique
// per (income, month).
type MonthlyIncomeInstance struct {
	ID             int32            `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	IncomeID       int32            `json:"incomeId"`
	Month          string           `json:"month"`
	ExpectedAmount decimal.Decimal  `json:"expectedAmount"`
	ActualAmount   *decimal.Decimal `json:"actualAmount,omitempty"`
	Status         IncomeStatus     `json:"status"`
	ReceivedAt     *time.Time       `json:"receivedAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ExpenseInstanceRepository persists monthly expense instances.
type ExpenseInstanceRepository interface {
	// InsertIfAbsent inserts the instance unless one already exists for
	// its (template, month) or (debt, month) key. A losing concurrent
	// insert is a silent no-op: created=false, no error.
	InsertIfAbsent(ctx context.Context, inst *MonthlyExpenseInstance) (created bool, err error)
	// Create inserts an ad-hoc (templateless) instance.
	Create(ctx context.Context, inst *MonthlyExpenseInstance) (*MonthlyExpenseInstance, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*MonthlyExpenseInstance, error)
	ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*MonthlyExpenseInstance, error)
	// UpdateStatus transitions the instance to the new status, guarded on
	// the current status being one of from. Returns ErrInstanceNotFound
	// when the guard fails (e.g. a concurrent sweep won the race).
	UpdateStatus(ctx context.Context, userID uuid.UUID, id int32, from []ExpenseStatus, to ExpenseStatus, paidAt *time.Time) (*MonthlyExpenseInstance, error)
}

// IncomeInstanceRepository persists monthly income instances.
type IncomeInstanceRepository interface {
	InsertIfAbsent(ctx context.Context, inst *MonthlyIncomeInstance) (created bool, err error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*MonthlyIncomeInstance, error)
	ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*MonthlyIncomeInstance, error)
	MarkReceived(ctx context.Context, userID uuid.UUID, id int32, actual decimal.Decimal, status IncomeStatus, receivedAt time.Time) (*MonthlyIncomeInstance, error)
	// UpsertReceived inserts or updates the instance keyed on
	// (income, month); the only creation path for variable incomes.
	UpsertReceived(ctx context.Context, inst *MonthlyIncomeInstance) (*MonthlyIncomeInstance, error)
}
