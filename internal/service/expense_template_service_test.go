package service

import (
	"context"
	"testing"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTemplate_Recurring(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)
	userID := uuid.New()

	tmpl, err := svc.CreateTemplate(context.Background(), userID, CreateExpenseTemplateInput{
		Name:   "  Netflix  ",
		Amount: decimal.NewFromInt(15),
		Type:   domain.ExpenseTypeRecurring,
		Recurrence: &domain.RecurrenceRule{
			Frequency: domain.FrequencyMonthly,
			AnchorDay: 10,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Netflix", tmpl.Name)
	assert.True(t, tmpl.IsActive)
}

func TestCreateTemplate_RecurringWithoutRule(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)

	_, err := svc.CreateTemplate(context.Background(), uuid.New(), CreateExpenseTemplateInput{
		Name:   "Netflix",
		Amount: decimal.NewFromInt(15),
		Type:   domain.ExpenseTypeRecurring,
	})
	assert.Equal(t, domain.ErrRecurrenceRequired, err)
}

func TestCreateTemplate_OneTimeWithoutDueDate(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)

	_, err := svc.CreateTemplate(context.Background(), uuid.New(), CreateExpenseTemplateInput{
		Name:   "Contrôle technique",
		Amount: decimal.NewFromInt(85),
		Type:   domain.ExpenseTypeOneTime,
	})
	assert.Equal(t, domain.ErrDueDateRequired, err)
}

func TestCreateTemplate_PlannedWithoutTarget(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)

	_, err := svc.CreateTemplate(context.Background(), uuid.New(), CreateExpenseTemplateInput{
		Name: "Vacances",
		Type: domain.ExpenseTypePlanned,
	})
	assert.Equal(t, domain.ErrTargetAmountRequired, err)
}

func TestUpdateTemplate_Success(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)
	userID := uuid.New()

	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tmpl, err := svc.CreateTemplate(context.Background(), userID, CreateExpenseTemplateInput{
		Name:    "Contrôle technique",
		Amount:  decimal.NewFromInt(85),
		Type:    domain.ExpenseTypeOneTime,
		DueDate: &due,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTemplate(context.Background(), userID, tmpl.ID, UpdateExpenseTemplateInput{
		Name:     "Contrôle technique",
		Amount:   decimal.NewFromInt(95),
		DueDate:  &due,
		IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(95).Equal(updated.Amount))
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)

	_, err := svc.UpdateTemplate(context.Background(), uuid.New(), 999, UpdateExpenseTemplateInput{
		Name:   "X",
		Amount: decimal.NewFromInt(1),
	})
	assert.Equal(t, domain.ErrExpenseTemplateNotFound, err)
}

func TestDeactivateTemplate_StopsGenerationOnly(t *testing.T) {
	repo := testutil.NewMockExpenseTemplateRepository()
	svc := NewExpenseTemplateService(repo)
	userID := uuid.New()

	tmpl, err := svc.CreateTemplate(context.Background(), userID, CreateExpenseTemplateInput{
		Name:   "Netflix",
		Amount: decimal.NewFromInt(15),
		Type:   domain.ExpenseTypeRecurring,
		Recurrence: &domain.RecurrenceRule{
			Frequency: domain.FrequencyMonthly,
			AnchorDay: 10,
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateTemplate(context.Background(), userID, tmpl.ID))

	// Still readable; only future generation skips it.
	got, err := svc.GetTemplate(context.Background(), userID, tmpl.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := repo.ListActiveByType(context.Background(), userID, domain.ExpenseTypeRecurring)
	require.NoError(t, err)
	assert.Empty(t, active)
}
