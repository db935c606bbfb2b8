package service

import (
	"context"
	"testing"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorFixture struct {
	expenseTemplates *testutil.MockExpenseTemplateRepository
	incomeTemplates  *testutil.MockIncomeTemplateRepository
	instances        *testutil.MockExpenseInstanceRepository
	incomeInstances  *testutil.MockIncomeInstanceRepository
	debts            *testutil.MockDebtRepository
	svc              *GeneratorService
	userID           uuid.UUID
}

func newGeneratorFixture() *generatorFixture {
	expenseTemplates := testutil.NewMockExpenseTemplateRepository()
	incomeTemplates := testutil.NewMockIncomeTemplateRepository()
	instances := testutil.NewMockExpenseInstanceRepository()
	incomeInstances := testutil.NewMockIncomeInstanceRepository()
	debts := testutil.NewMockDebtRepository(instances)

	return &generatorFixture{
		expenseTemplates: expenseTemplates,
		incomeTemplates:  incomeTemplates,
		instances:        instances,
		incomeInstances:  incomeInstances,
		debts:            debts,
		svc:              NewGeneratorService(expenseTemplates, incomeTemplates, debts, instances, incomeInstances),
		userID:           uuid.New(),
	}
}

func (f *generatorFixture) addRecurring(name string, amount int64, anchorDay int32, autoDebit bool) *domain.ExpenseTemplate {
	t, _ := f.expenseTemplates.Create(context.Background(), &domain.ExpenseTemplate{
		UserID: f.userID,
		Name:   name,
		Amount: decimal.NewFromInt(amount),
		Type:   domain.ExpenseTypeRecurring,
		Recurrence: &domain.RecurrenceRule{
			Frequency: domain.FrequencyMonthly,
			AnchorDay: anchorDay,
		},
		AutoDebit: autoDebit,
		IsActive:  true,
	})
	return t
}

func TestGenerate_CreatesRecurringInstances(t *testing.T) {
	f := newGeneratorFixture()
	f.addRecurring("Netflix", 15, 10, false)
	f.addRecurring("Loyer", 900, 1, true)

	result, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ExpensesCreated)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-03")
	require.Len(t, instances, 2)
	for _, inst := range instances {
		assert.Equal(t, domain.ExpenseStatusUpcoming, inst.Status)
		assert.Equal(t, "2025-03", inst.Month)
		assert.True(t, inst.IsPlanned)
		assert.Equal(t, domain.OriginTemplate, inst.Origin())
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	f := newGeneratorFixture()
	f.addRecurring("Netflix", 15, 10, false)

	month := util.Month{Year: 2025, Month: time.March}
	first, err := f.svc.Generate(context.Background(), f.userID, month)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ExpensesCreated)

	second, err := f.svc.Generate(context.Background(), f.userID, month)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ExpensesCreated)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-03")
	assert.Len(t, instances, 1)
}

func TestGenerate_PreservesManualEdits(t *testing.T) {
	f := newGeneratorFixture()
	tmpl := f.addRecurring("Netflix", 15, 10, false)

	month := util.Month{Year: 2025, Month: time.March}
	_, err := f.svc.Generate(context.Background(), f.userID, month)
	require.NoError(t, err)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-03")
	require.Len(t, instances, 1)
	paidAt := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	instances[0].Status = domain.ExpenseStatusPaid
	instances[0].PaidAt = &paidAt

	_, err = f.svc.Generate(context.Background(), f.userID, month)
	require.NoError(t, err)

	instances, _ = f.instances.ListByMonth(context.Background(), f.userID, "2025-03")
	require.Len(t, instances, 1)
	assert.Equal(t, domain.ExpenseStatusPaid, instances[0].Status)
	assert.Equal(t, tmpl.ID, *instances[0].TemplateID)
}

func TestGenerate_AnchorDayClampedInShortMonth(t *testing.T) {
	f := newGeneratorFixture()
	f.addRecurring("Assurance", 60, 31, false)

	_, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2023, Month: time.February})
	require.NoError(t, err)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2023-02")
	require.Len(t, instances, 1)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), instances[0].DueDate)
}

func TestGenerate_OneTimeOnlyInItsMonth(t *testing.T) {
	f := newGeneratorFixture()
	due := time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)
	f.expenseTemplates.Create(context.Background(), &domain.ExpenseTemplate{
		UserID:   f.userID,
		Name:     "Contrôle technique",
		Amount:   decimal.NewFromInt(85),
		Type:     domain.ExpenseTypeOneTime,
		DueDate:  &due,
		IsActive: true,
	})

	march, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 0, march.ExpensesCreated)

	april, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.April})
	require.NoError(t, err)
	assert.Equal(t, 1, april.ExpensesCreated)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-04")
	require.Len(t, instances, 1)
	assert.Equal(t, due, instances[0].DueDate)
}

func TestGenerate_DebtInstance(t *testing.T) {
	f := newGeneratorFixture()
	debt, _ := f.debts.Create(context.Background(), &domain.DebtTemplate{
		UserID:           f.userID,
		Name:             "Prêt auto",
		OriginalAmount:   decimal.NewFromInt(5000),
		RemainingBalance: decimal.NewFromInt(1200),
		PaymentAmount:    decimal.NewFromInt(250),
		Recurrence:       domain.RecurrenceRule{Frequency: domain.FrequencyMonthly, AnchorDay: 5},
		AutoDebit:        true,
		IsActive:         true,
	})

	result, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpensesCreated)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-03")
	require.Len(t, instances, 1)
	assert.Equal(t, "Prêt auto (versement)", instances[0].Name)
	assert.Equal(t, debt.ID, *instances[0].DebtID)
	assert.True(t, instances[0].AutoCharged)
	assert.True(t, decimal.NewFromInt(250).Equal(instances[0].Amount))
	assert.Equal(t, domain.OriginDebt, instances[0].Origin())
}

func TestGenerate_FinalInstalmentClampedToBalance(t *testing.T) {
	f := newGeneratorFixture()
	f.debts.Create(context.Background(), &domain.DebtTemplate{
		UserID:           f.userID,
		Name:             "Prêt auto",
		OriginalAmount:   decimal.NewFromInt(5000),
		RemainingBalance: decimal.NewFromInt(130),
		PaymentAmount:    decimal.NewFromInt(250),
		Recurrence:       domain.RecurrenceRule{Frequency: domain.FrequencyMonthly, AnchorDay: 5},
		IsActive:         true,
	})

	_, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-03")
	require.Len(t, instances, 1)
	assert.True(t, decimal.NewFromInt(130).Equal(instances[0].Amount))
}

func TestGenerate_SettledDebtSkipped(t *testing.T) {
	f := newGeneratorFixture()
	f.debts.Create(context.Background(), &domain.DebtTemplate{
		UserID:           f.userID,
		Name:             "Prêt soldé",
		OriginalAmount:   decimal.NewFromInt(5000),
		RemainingBalance: decimal.Zero,
		PaymentAmount:    decimal.NewFromInt(250),
		Recurrence:       domain.RecurrenceRule{Frequency: domain.FrequencyMonthly, AnchorDay: 5},
		IsActive:         true,
	})

	result, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExpensesCreated)
}

func TestGenerate_FixedIncomesNormalized(t *testing.T) {
	f := newGeneratorFixture()
	salary := decimal.NewFromInt(1000)
	bonus := decimal.NewFromInt(2400)
	f.incomeTemplates.Create(context.Background(), &domain.IncomeTemplate{
		UserID: f.userID, Name: "Salaire", Source: "Salaire",
		Amount: &salary, Frequency: domain.IncomeFrequencyBiweekly, IsActive: true,
	})
	f.incomeTemplates.Create(context.Background(), &domain.IncomeTemplate{
		UserID: f.userID, Name: "Prime", Source: "Prime",
		Amount: &bonus, Frequency: domain.IncomeFrequencyYearly, IsActive: true,
	})

	result, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 2, result.IncomesCreated)

	instances, _ := f.incomeInstances.ListByMonth(context.Background(), f.userID, "2025-03")
	require.Len(t, instances, 2)
	amounts := map[string]bool{}
	for _, inst := range instances {
		assert.Equal(t, domain.IncomeStatusExpected, inst.Status)
		amounts[inst.ExpectedAmount.String()] = true
	}
	// 1000 * 26 / 12 and 2400 / 12
	assert.True(t, amounts["2166.67"])
	assert.True(t, amounts["200"])
}

func TestGenerate_VariableIncomeNotExpanded(t *testing.T) {
	f := newGeneratorFixture()
	f.incomeTemplates.Create(context.Background(), &domain.IncomeTemplate{
		UserID: f.userID, Name: "Freelance", Source: "Freelance",
		Frequency: domain.IncomeFrequencyVariable, IsActive: true,
	})

	result, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 0, result.IncomesCreated)
}

func TestGenerate_QuarterlyCadenceSkipsOffMonths(t *testing.T) {
	f := newGeneratorFixture()
	next := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	f.expenseTemplates.Create(context.Background(), &domain.ExpenseTemplate{
		UserID: f.userID,
		Name:   "Impôts",
		Amount: decimal.NewFromInt(300),
		Type:   domain.ExpenseTypeRecurring,
		Recurrence: &domain.RecurrenceRule{
			Frequency: domain.FrequencyQuarterly,
			AnchorDay: 15,
		},
		NextDueDate: &next,
		IsActive:    true,
	})

	feb, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.February})
	require.NoError(t, err)
	assert.Equal(t, 0, feb.ExpensesCreated)

	apr, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.April})
	require.NoError(t, err)
	assert.Equal(t, 1, apr.ExpensesCreated)

	instances, _ := f.instances.ListByMonth(context.Background(), f.userID, "2025-04")
	require.Len(t, instances, 1)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), instances[0].DueDate)
}

func TestGenerate_ConcurrentLoserCountsNothing(t *testing.T) {
	f := newGeneratorFixture()
	f.addRecurring("Netflix", 15, 10, false)

	// Another generator won every insert.
	f.instances.InsertIfAbsentFn = func(inst *domain.MonthlyExpenseInstance) (bool, error) {
		return false, nil
	}

	result, err := f.svc.Generate(context.Background(), f.userID, util.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExpensesCreated)
}
