package service

import (
	"context"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
)

// MonthService assembles a month page. Every fetch runs the same
// pipeline: generate the month's instances, sweep them against the
// clock, then read and summarize. Both steps are idempotent, so
// concurrent fetches of the same month converge on identical state.
type MonthService struct {
	generator           *GeneratorService
	reconciler          *ReconcilerService
	summary             *SummaryService
	expenseInstanceRepo domain.ExpenseInstanceRepository
	incomeInstanceRepo  domain.IncomeInstanceRepository
}

// NewMonthService creates a new MonthService
func NewMonthService(
	generator *GeneratorService,
	reconciler *ReconcilerService,
	summary *SummaryService,
	expenseInstanceRepo domain.ExpenseInstanceRepository,
	incomeInstanceRepo domain.IncomeInstanceRepository,
) *MonthService {
	return &MonthService{
		generator:           generator,
		reconciler:          reconciler,
		summary:             summary,
		expenseInstanceRepo: expenseInstanceRepo,
		incomeInstanceRepo:  incomeInstanceRepo,
	}
}

// GetMonth returns the reconciled view of one month
func (s *MonthService) GetMonth(ctx context.Context, userID uuid.UUID, month util.Month, now time.Time) (*domain.MonthView, error) {
	if _, err := s.generator.Generate(ctx, userID, month); err != nil {
		return nil, err
	}
	if _, err := s.reconciler.Sweep(ctx, userID, month, now); err != nil {
		return nil, err
	}

	expenses, err := s.expenseInstanceRepo.ListByMonth(ctx, userID, month.String())
	if err != nil {
		return nil, err
	}
	incomes, err := s.incomeInstanceRepo.ListByMonth(ctx, userID, month.String())
	if err != nil {
		return nil, err
	}

	summary, err := s.summary.BuildSummary(ctx, userID, month, expenses, incomes)
	if err != nil {
		return nil, err
	}

	return &domain.MonthView{
		Month:    month.String(),
		Expenses: expenses,
		Incomes:  incomes,
		Summary:  summary,
	}, nil
}
