package service

import (
	"context"
	"testing"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonthService() (*MonthService, *generatorFixture, *testutil.MockSectionRepository) {
	f := newGeneratorFixture()
	sections := testutil.NewMockSectionRepository()
	reconciler := NewReconcilerService(f.instances)
	summary := NewSummaryService(sections, f.incomeTemplates)
	return NewMonthService(f.svc, reconciler, summary, f.instances, f.incomeInstances), f, sections
}

func TestGetMonth_GeneratesSweepsAndSummarizes(t *testing.T) {
	svc, f, _ := newMonthService()
	userID := f.userID

	// Rent due on the 1st, manual; a streaming bill on the 28th,
	// auto-debited; a monthly salary.
	f.addRecurring("Loyer", 900, 1, false)
	f.addRecurring("Netflix", 15, 28, true)
	salary := decimal.NewFromInt(2000)
	f.incomeTemplates.Create(context.Background(), &domain.IncomeTemplate{
		UserID: userID, Name: "Salaire", Source: "Salaire",
		Amount: &salary, Frequency: domain.IncomeFrequencyMonthly, IsActive: true,
	})

	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	view, err := svc.GetMonth(context.Background(), userID, util.Month{Year: 2025, Month: time.March}, now)
	require.NoError(t, err)

	assert.Equal(t, "2025-03", view.Month)
	require.Len(t, view.Expenses, 2)
	require.Len(t, view.Incomes, 1)

	byName := map[string]*domain.MonthlyExpenseInstance{}
	for _, inst := range view.Expenses {
		byName[inst.Name] = inst
	}
	// The rent fell due on the 1st and was never paid; the streaming
	// bill is not due yet.
	assert.Equal(t, domain.ExpenseStatusOverdue, byName["Loyer"].Status)
	assert.Equal(t, domain.ExpenseStatusUpcoming, byName["Netflix"].Status)

	require.NotNil(t, view.Summary)
	assert.Equal(t, 2, view.Summary.Count)
	assert.Equal(t, 1, view.Summary.OverdueCount)
	assert.True(t, decimal.NewFromInt(2000).Equal(view.Summary.ExpectedIncome))
}

func TestGetMonth_RepeatedFetchesConverge(t *testing.T) {
	svc, f, _ := newMonthService()
	userID := f.userID
	f.addRecurring("Loyer", 900, 1, false)

	month := util.Month{Year: 2025, Month: time.March}
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	first, err := svc.GetMonth(context.Background(), userID, month, now)
	require.NoError(t, err)
	second, err := svc.GetMonth(context.Background(), userID, month, now)
	require.NoError(t, err)

	require.Len(t, first.Expenses, 1)
	require.Len(t, second.Expenses, 1)
	assert.Equal(t, first.Expenses[0].ID, second.Expenses[0].ID)
	assert.Equal(t, first.Expenses[0].Status, second.Expenses[0].Status)
}

func TestGetMonth_AutoDebitSettledOnSchedule(t *testing.T) {
	svc, f, _ := newMonthService()
	userID := f.userID
	f.addRecurring("Netflix", 15, 10, true)

	// Fetched well after the due date; the instance reads as paid on
	// the due date itself.
	now := time.Date(2025, 3, 25, 10, 0, 0, 0, time.UTC)
	view, err := svc.GetMonth(context.Background(), userID, util.Month{Year: 2025, Month: time.March}, now)
	require.NoError(t, err)

	require.Len(t, view.Expenses, 1)
	inst := view.Expenses[0]
	assert.Equal(t, domain.ExpenseStatusPaid, inst.Status)
	require.NotNil(t, inst.PaidAt)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *inst.PaidAt)
	assert.Equal(t, 1, view.Summary.PaidCount)
}
