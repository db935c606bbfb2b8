package service

import (
	"context"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GeneratorService expands standing definitions into month-scoped
// instances. Generation is idempotent: every instance is keyed on its
// (template, month) or (debt, month) pair and a second run, concurrent
// or not, creates nothing new.
type GeneratorService struct {
	expenseTemplateRepo domain.ExpenseTemplateRepository
	incomeTemplateRepo  domain.IncomeTemplateRepository
	debtRepo            domain.DebtRepository
	expenseInstanceRepo domain.ExpenseInstanceRepository
	incomeInstanceRepo  domain.IncomeInstanceRepository
}

// NewGeneratorService creates a new GeneratorService
func NewGeneratorService(
	expenseTemplateRepo domain.ExpenseTemplateRepository,
	incomeTemplateRepo domain.IncomeTemplateRepository,
	debtRepo domain.DebtRepository,
	expenseInstanceRepo domain.ExpenseInstanceRepository,
	incomeInstanceRepo domain.IncomeInstanceRepository,
) *GeneratorService {
	return &GeneratorService{
		expenseTemplateRepo: expenseTemplateRepo,
		incomeTemplateRepo:  incomeTemplateRepo,
		debtRepo:            debtRepo,
		expenseInstanceRepo: expenseInstanceRepo,
		incomeInstanceRepo:  incomeInstanceRepo,
	}
}

// GenerateResult reports how many instances a generation pass created
type GenerateResult struct {
	ExpensesCreated int
	IncomesCreated  int
}

// Generate materializes the month's instances from recurring templates,
// one-time templates, active debts and fixed incomes. Already-present
// instances are left untouched, manual edits included.
func (s *GeneratorService) Generate(ctx context.Context, userID uuid.UUID, month util.Month) (*GenerateResult, error) {
	result := &GenerateResult{}

	recurring, err := s.expenseTemplateRepo.ListActiveByType(ctx, userID, domain.ExpenseTypeRecurring)
	if err != nil {
		return nil, err
	}
	for _, t := range recurring {
		due := t.Recurrence.DueDateInMonth(month, t.NextDueDate)
		if due == nil {
			continue
		}
		created, err := s.expenseInstanceRepo.InsertIfAbsent(ctx, &domain.MonthlyExpenseInstance{
			UserID:      userID,
			TemplateID:  &t.ID,
			SectionID:   t.SectionID,
			CardID:      t.CardID,
			Month:       month.String(),
			Name:        t.Name,
			Amount:      t.Amount,
			DueDate:     *due,
			Status:      domain.ExpenseStatusUpcoming,
			AutoCharged: t.AutoDebit,
			IsPlanned:   true,
		})
		if err != nil {
			return nil, err
		}
		if created {
			result.ExpensesCreated++
		}
	}

	oneTime, err := s.expenseTemplateRepo.ListActiveByType(ctx, userID, domain.ExpenseTypeOneTime)
	if err != nil {
		return nil, err
	}
	for _, t := range oneTime {
		if t.DueDate == nil || !month.Contains(*t.DueDate) {
			continue
		}
		created, err := s.expenseInstanceRepo.InsertIfAbsent(ctx, &domain.MonthlyExpenseInstance{
			UserID:      userID,
			TemplateID:  &t.ID,
			SectionID:   t.SectionID,
			CardID:      t.CardID,
			Month:       month.String(),
			Name:        t.Name,
			Amount:      t.Amount,
			DueDate:     *t.DueDate,
			Status:      domain.ExpenseStatusUpcoming,
			AutoCharged: t.AutoDebit,
			IsPlanned:   true,
		})
		if err != nil {
			return nil, err
		}
		if created {
			result.ExpensesCreated++
		}
	}

	debts, err := s.debtRepo.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	for _, d := range debts {
		if !d.RemainingBalance.IsPositive() {
			continue
		}
		due := d.Recurrence.DueDateInMonth(month, d.NextDueDate)
		if due == nil {
			continue
		}
		// The final instalment never exceeds what is left to pay.
		amount := d.PaymentAmount
		if amount.GreaterThan(d.RemainingBalance) {
			amount = d.RemainingBalance
		}
		created, err := s.expenseInstanceRepo.InsertIfAbsent(ctx, &domain.MonthlyExpenseInstance{
			UserID:      userID,
			DebtID:      &d.ID,
			Month:       month.String(),
			Name:        d.InstanceName(),
			Amount:      amount,
			DueDate:     *due,
			Status:      domain.ExpenseStatusUpcoming,
			AutoCharged: d.AutoDebit,
			IsPlanned:   true,
		})
		if err != nil {
			return nil, err
		}
		if created {
			result.ExpensesCreated++
		}
	}

	incomes, err := s.incomeTemplateRepo.ListActiveFixed(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range incomes {
		created, err := s.incomeInstanceRepo.InsertIfAbsent(ctx, &domain.MonthlyIncomeInstance{
			UserID:         userID,
			IncomeID:       t.ID,
			Month:          month.String(),
			ExpectedAmount: t.MonthlyEquivalent(),
			Status:         domain.IncomeStatusExpected,
		})
		if err != nil {
			return nil, err
		}
		if created {
			result.IncomesCreated++
		}
	}

	if result.ExpensesCreated > 0 || result.IncomesCreated > 0 {
		log.Debug().
			Str("user_id", userID.String()).
			Str("month", month.String()).
			Int("expenses", result.ExpensesCreated).
			Int("incomes", result.IncomesCreated).
			Msg("Generated monthly instances")
	}

	return result, nil
}
