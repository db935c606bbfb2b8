package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IncomeFrequency string

const (
	IncomeFrequencyMonthly  IncomeFrequency = "monthly"
	IncomeFrequencyBiweekly IncomeFrequency = "biweekly"
	IncomeFrequencyYearly   IncomeFrequency = "yearly"
	// IncomeFrequencyVariable incomes carry no fixed amount and are never
	// auto-expanded; a manual receipt creates their monthly instance.
	IncomeFrequencyVariable IncomeFrequency = "variable"
)

// Valid reports whether f is a known income frequency.
func (f IncomeFrequency) Valid() bool {
	switch f {
	case IncomeFrequencyMonthly, IncomeFrequencyBiweekly, IncomeFrequencyYearly, IncomeFrequencyVariable:
		return true
	}
	return false
}

// IncomeTemplate is a standing income definition (salary, freelance...).
type IncomeTemplate struct {
	ID     int32     `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Source string    `json:"source"`
	// Amount is nil for variable incomes.
	Amount *decimal.Decimal `json:"amount,omitempty"`
	// EstimatedAmount is an optional planning figure for variable incomes.
	EstimatedAmount *decimal.Decimal `json:"estimatedAmount,omitempty"`
	Frequency       IncomeFrequency  `json:"frequency"`
	IsActive        bool             `json:"isActive"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Validate checks field-level invariants.
func (t *IncomeTemplate) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !t.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if t.Frequency != IncomeFrequencyVariable {
		if t.Amount == nil || t.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrIncomeAmountRequired
		}
	}
	return nil
}

// IsVariable reports whether the income has no fixed amount.
func (t *IncomeTemplate) IsVariable() bool {
	return t.Frequency == IncomeFrequencyVariable
}

// MonthlyEquivalent normalizes the fixed amount to a monthly figure:
// biweekly pay recurs 26 times a year, yearly pay is spread over 12
// months. Variable incomes have no equivalent and yield zero.
func (t *IncomeTemplate) MonthlyEquivalent() decimal.Decimal {
	if t.Amount == nil {
		return decimal.Zero
	}
	switch t.Frequency {
	case IncomeFrequencyMonthly:
		return *t.Amount
	case IncomeFrequencyBiweekly:
		return t.Amount.Mul(decimal.NewFromInt(26)).Div(decimal.NewFromInt(12)).Round(2)
	case IncomeFrequencyYearly:
		return t.Amount.Div(decimal.NewFromInt(12)).Round(2)
	default:
		return decimal.Zero
	}
}

// IncomeTemplateRepository persists income templates.
type IncomeTemplateRepository interface {
	Create(ctx context.Context, t *IncomeTemplate) (*IncomeTemplate, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*IncomeTemplate, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*IncomeTemplate, error)
	// ListActiveFixed returns active templates with a fixed frequency
	// (everything except variable).
	ListActiveFixed(ctx context.Context, userID uuid.UUID) ([]*IncomeTemplate, error)
	Update(ctx context.Context, t *IncomeTemplate) (*IncomeTemplate, error)
	Deactivate(ctx context.Context, userID uuid.UUID, id int32) error
}
