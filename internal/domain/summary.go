package domain

import "github.com/shopspring/decimal"

// SectionTotal is the paid-vs-total rollup for one dashboard section.
// SectionID is nil for expenses with no section.
type SectionTotal struct {
	SectionID *int32          `json:"sectionId,omitempty"`
	Name      string          `json:"name"`
	Paid      decimal.Decimal `json:"paid"`
	Total     decimal.Decimal `json:"total"`
}

// IncomeSourceTotal is the expected-vs-actual rollup for one income
// source.
type IncomeSourceTotal struct {
	IncomeID int32           `json:"incomeId"`
	Source   string          `json:"source"`
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
}

// MonthlySummary is the read-side rollup for one month's ledger. It
// reflects ledger state at call time; nothing here is cached or
// authoritative.
type MonthlySummary struct {
	Month string `json:"month"`

	Count        int `json:"count"`
	PaidCount    int `json:"paidCount"`
	OverdueCount int `json:"overdueCount"`

	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	PaidExpenses  decimal.Decimal `json:"paidExpenses"`

	ExpectedIncome decimal.Decimal `json:"expectedIncome"`
	ReceivedIncome decimal.Decimal `json:"receivedIncome"`

	// Solde is the month's cash-flow balance: actual income received
	// minus expenses paid.
	Solde decimal.Decimal `json:"solde"`

	Sections []SectionTotal      `json:"sections"`
	Incomes  []IncomeSourceTotal `json:"incomes"`

	// UnregisteredIncomes lists variable income templates with no
	// instance for the month yet; they await a manual receipt.
	UnregisteredIncomes []*IncomeTemplate `json:"unregisteredIncomes"`
}

// MonthView is what a month page renders: the reconciled ledgers plus
// the summary rollup.
type MonthView struct {
	Month    string                    `json:"month"`
	Expenses []*MonthlyExpenseInstance `json:"expenses"`
	Incomes  []*MonthlyIncomeInstance  `json:"incomes"`
	Summary  *MonthlySummary           `json:"summary"`
}
