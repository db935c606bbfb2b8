package service

import (
	"context"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryService computes the read-side rollup for a month's ledgers.
// Everything is derived at call time from the instances handed in;
// nothing is cached.
type SummaryService struct {
	sectionRepo        domain.SectionRepository
	incomeTemplateRepo domain.IncomeTemplateRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(sectionRepo domain.SectionRepository, incomeTemplateRepo domain.IncomeTemplateRepository) *SummaryService {
	return &SummaryService{sectionRepo: sectionRepo, incomeTemplateRepo: incomeTemplateRepo}
}

// BuildSummary aggregates the month's expense and income instances into
// counts, totals, the cash-flow solde, and the per-section and
// per-source breakdowns
func (s *SummaryService) BuildSummary(ctx context.Context, userID uuid.UUID, month util.Month, expenses []*domain.MonthlyExpenseInstance, incomes []*domain.MonthlyIncomeInstance) (*domain.MonthlySummary, error) {
	summary := &domain.MonthlySummary{
		Month:          month.String(),
		TotalExpenses:  decimal.Zero,
		PaidExpenses:   decimal.Zero,
		ExpectedIncome: decimal.Zero,
		ReceivedIncome: decimal.Zero,
		Solde:          decimal.Zero,
	}

	sectionNames := make(map[int32]string)
	sections, err := s.sectionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, sec := range sections {
		sectionNames[sec.ID] = sec.Name
	}

	type sectionKey struct {
		id   int32
		none bool
	}
	sectionTotals := make(map[sectionKey]*domain.SectionTotal)
	var sectionOrder []sectionKey

	summary.Count = len(expenses)
	for _, inst := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(inst.Amount)

		switch inst.Status {
		case domain.ExpenseStatusPaid:
			summary.PaidCount++
			summary.PaidExpenses = summary.PaidExpenses.Add(inst.Amount)
		case domain.ExpenseStatusOverdue:
			summary.OverdueCount++
		}

		key := sectionKey{none: true}
		name := "Autres"
		if inst.SectionID != nil {
			key = sectionKey{id: *inst.SectionID}
			if n, ok := sectionNames[*inst.SectionID]; ok {
				name = n
			}
		}
		total, ok := sectionTotals[key]
		if !ok {
			total = &domain.SectionTotal{
				SectionID: inst.SectionID,
				Name:      name,
				Paid:      decimal.Zero,
				Total:     decimal.Zero,
			}
			sectionTotals[key] = total
			sectionOrder = append(sectionOrder, key)
		}
		total.Total = total.Total.Add(inst.Amount)
		if inst.Status == domain.ExpenseStatusPaid {
			total.Paid = total.Paid.Add(inst.Amount)
		}
	}
	for _, key := range sectionOrder {
		summary.Sections = append(summary.Sections, *sectionTotals[key])
	}

	incomeTemplates, err := s.incomeTemplateRepo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	sourceNames := make(map[int32]string)
	for _, t := range incomeTemplates {
		sourceNames[t.ID] = t.Source
	}

	registered := make(map[int32]bool)
	for _, inst := range incomes {
		registered[inst.IncomeID] = true
		summary.ExpectedIncome = summary.ExpectedIncome.Add(inst.ExpectedAmount)

		actual := decimal.Zero
		if inst.ActualAmount != nil {
			actual = *inst.ActualAmount
			summary.ReceivedIncome = summary.ReceivedIncome.Add(actual)
		}

		summary.Incomes = append(summary.Incomes, domain.IncomeSourceTotal{
			IncomeID: inst.IncomeID,
			Source:   sourceNames[inst.IncomeID],
			Expected: inst.ExpectedAmount,
			Actual:   actual,
		})
	}

	// Variable incomes with no receipt yet are surfaced so the month
	// page can prompt for them.
	for _, t := range incomeTemplates {
		if t.IsActive && t.IsVariable() && !registered[t.ID] {
			summary.UnregisteredIncomes = append(summary.UnregisteredIncomes, t)
		}
	}

	summary.Solde = summary.ReceivedIncome.Sub(summary.PaidExpenses)
	return summary, nil
}
