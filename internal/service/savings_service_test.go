package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savingsFixture struct {
	templates *testutil.MockExpenseTemplateRepository
	savings   *testutil.MockSavingsRepository
	svc       *SavingsService
	userID    uuid.UUID
}

func newSavingsFixture() *savingsFixture {
	templates := testutil.NewMockExpenseTemplateRepository()
	savings := testutil.NewMockSavingsRepository(templates)
	return &savingsFixture{
		templates: templates,
		savings:   savings,
		svc:       NewSavingsService(templates, savings),
		userID:    uuid.New(),
	}
}

func (f *savingsFixture) seedPot(name string, target int64) *domain.ExpenseTemplate {
	amount := decimal.NewFromInt(target)
	pot, _ := f.templates.Create(context.Background(), &domain.ExpenseTemplate{
		UserID:       f.userID,
		Name:         name,
		Type:         domain.ExpenseTypePlanned,
		TargetAmount: &amount,
		SavedAmount:  decimal.Zero,
		IsActive:     true,
	})
	return pot
}

func TestContribute_MovesPotBalance(t *testing.T) {
	f := newSavingsFixture()
	pot := f.seedPot("Vacances", 2000)

	c, err := f.svc.Contribute(context.Background(), f.userID, pot.ID, decimal.NewFromInt(150), nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(c.Amount))
	assert.True(t, decimal.NewFromInt(150).Equal(f.templates.Templates[pot.ID].SavedAmount))
}

func TestContribute_RejectsNonPositive(t *testing.T) {
	f := newSavingsFixture()
	pot := f.seedPot("Vacances", 2000)

	_, err := f.svc.Contribute(context.Background(), f.userID, pot.ID, decimal.Zero, nil)
	assert.Equal(t, domain.ErrInvalidAmount, err)

	_, err = f.svc.Contribute(context.Background(), f.userID, pot.ID, decimal.NewFromInt(-5), nil)
	assert.Equal(t, domain.ErrInvalidAmount, err)
}

func TestContribute_NonPotRejected(t *testing.T) {
	f := newSavingsFixture()
	tmpl, _ := f.templates.Create(context.Background(), &domain.ExpenseTemplate{
		UserID: f.userID,
		Name:   "Netflix",
		Amount: decimal.NewFromInt(15),
		Type:   domain.ExpenseTypeRecurring,
		Recurrence: &domain.RecurrenceRule{
			Frequency: domain.FrequencyMonthly,
			AnchorDay: 10,
		},
		IsActive: true,
	})

	_, err := f.svc.Contribute(context.Background(), f.userID, tmpl.ID, decimal.NewFromInt(50), nil)
	assert.Equal(t, domain.ErrPotNotSavings, err)
}

func TestTransfer_Success(t *testing.T) {
	f := newSavingsFixture()
	from := f.seedPot("Vacances", 2000)
	to := f.seedPot("Travaux", 5000)

	_, err := f.svc.Contribute(context.Background(), f.userID, from.ID, decimal.NewFromInt(500), nil)
	require.NoError(t, err)

	result, err := f.svc.Transfer(context.Background(), f.userID, from.ID, to.ID, decimal.NewFromInt(200), nil)
	require.NoError(t, err)

	// Both legs share the transfer ID and the timestamp; the amounts
	// mirror each other.
	require.NotNil(t, result.Debit.TransferID)
	require.NotNil(t, result.Credit.TransferID)
	assert.Equal(t, result.TransferID, *result.Debit.TransferID)
	assert.Equal(t, result.TransferID, *result.Credit.TransferID)
	assert.Equal(t, result.Debit.CreatedAt, result.Credit.CreatedAt)
	assert.True(t, result.Debit.Amount.Neg().Equal(result.Credit.Amount))

	assert.True(t, decimal.NewFromInt(300).Equal(f.templates.Templates[from.ID].SavedAmount))
	assert.True(t, decimal.NewFromInt(200).Equal(f.templates.Templates[to.ID].SavedAmount))
}

func TestTransfer_SamePotRejected(t *testing.T) {
	f := newSavingsFixture()
	pot := f.seedPot("Vacances", 2000)

	_, err := f.svc.Transfer(context.Background(), f.userID, pot.ID, pot.ID, decimal.NewFromInt(50), nil)
	assert.Equal(t, domain.ErrSamePot, err)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	f := newSavingsFixture()
	from := f.seedPot("Vacances", 2000)
	to := f.seedPot("Travaux", 5000)

	_, err := f.svc.Contribute(context.Background(), f.userID, from.ID, decimal.NewFromInt(100), nil)
	require.NoError(t, err)

	_, err = f.svc.Transfer(context.Background(), f.userID, from.ID, to.ID, decimal.NewFromInt(150), nil)
	assert.Equal(t, domain.ErrInsufficientFunds, err)
}

func TestTransfer_StaleLedgerSumCannotOverdraw(t *testing.T) {
	f := newSavingsFixture()
	from := f.seedPot("Vacances", 2000)
	to := f.seedPot("Travaux", 5000)

	_, err := f.svc.Contribute(context.Background(), f.userID, from.ID, decimal.NewFromInt(100), nil)
	require.NoError(t, err)

	// The ledger sum the service checks is stale, as if a concurrent
	// withdrawal landed between the check and the write. The guarded
	// debit inside the transfer still refuses to overdraw the pot.
	f.savings.SumByPotFn = func(potID int32) (decimal.Decimal, error) {
		return decimal.NewFromInt(500), nil
	}

	_, err = f.svc.Transfer(context.Background(), f.userID, from.ID, to.ID, decimal.NewFromInt(200), nil)
	assert.Equal(t, domain.ErrInsufficientFunds, err)

	assert.True(t, decimal.NewFromInt(100).Equal(f.templates.Templates[from.ID].SavedAmount))
	assert.True(t, f.templates.Templates[to.ID].SavedAmount.IsZero())

	f.savings.SumByPotFn = nil
	history, _ := f.svc.GetHistory(context.Background(), f.userID, to.ID)
	assert.Empty(t, history)
}

func TestTransfer_FailureCreatesNeitherLeg(t *testing.T) {
	f := newSavingsFixture()
	from := f.seedPot("Vacances", 2000)
	to := f.seedPot("Travaux", 5000)

	_, err := f.svc.Contribute(context.Background(), f.userID, from.ID, decimal.NewFromInt(500), nil)
	require.NoError(t, err)

	f.savings.FailSecondLeg = true
	f.savings.SecondLegErr = assert.AnError

	_, err = f.svc.Transfer(context.Background(), f.userID, from.ID, to.ID, decimal.NewFromInt(200), nil)
	require.Error(t, err)

	assert.True(t, decimal.NewFromInt(500).Equal(f.templates.Templates[from.ID].SavedAmount))
	assert.True(t, f.templates.Templates[to.ID].SavedAmount.IsZero())

	history, _ := f.svc.GetHistory(context.Background(), f.userID, from.ID)
	assert.Len(t, history, 1)
	history, _ = f.svc.GetHistory(context.Background(), f.userID, to.ID)
	assert.Empty(t, history)
}

func TestGetFreePot_Lazy(t *testing.T) {
	f := newSavingsFixture()

	pot, err := f.svc.GetFreePot(context.Background(), f.userID)
	require.NoError(t, err)
	assert.True(t, pot.IsFreePot)

	again, err := f.svc.GetFreePot(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, pot.ID, again.ID)
}

func TestReconcile_RepairsDivergedPot(t *testing.T) {
	f := newSavingsFixture()
	pot := f.seedPot("Vacances", 2000)

	_, err := f.svc.Contribute(context.Background(), f.userID, pot.ID, decimal.NewFromInt(300), nil)
	require.NoError(t, err)

	// Corrupt the denormalized balance behind the ledger's back.
	f.templates.Templates[pot.ID].SavedAmount = decimal.NewFromInt(999)

	result, err := f.svc.Reconcile(context.Background(), f.userID, pot.ID)
	require.NoError(t, err)
	assert.True(t, result.Repaired)
	assert.True(t, decimal.NewFromInt(300).Equal(f.templates.Templates[pot.ID].SavedAmount))
}

func TestSavings_RandomOperationsKeepBalancesConsistent(t *testing.T) {
	f := newSavingsFixture()
	pots := []*domain.ExpenseTemplate{
		f.seedPot("Vacances", 2000),
		f.seedPot("Travaux", 5000),
		f.seedPot("Voiture", 8000),
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		amount := decimal.NewFromInt(rng.Int63n(200) + 1)
		if rng.Intn(2) == 0 {
			pot := pots[rng.Intn(len(pots))]
			_, err := f.svc.Contribute(context.Background(), f.userID, pot.ID, amount, nil)
			require.NoError(t, err)
		} else {
			from := pots[rng.Intn(len(pots))]
			to := pots[rng.Intn(len(pots))]
			_, err := f.svc.Transfer(context.Background(), f.userID, from.ID, to.ID, amount, nil)
			if err != nil {
				// Same pot or insufficient funds; both leave state alone.
				require.Contains(t, []error{domain.ErrSamePot, domain.ErrInsufficientFunds}, err)
			}
		}
	}

	for _, pot := range pots {
		sum, err := f.savings.SumByPot(context.Background(), f.userID, pot.ID)
		require.NoError(t, err)
		stored := f.templates.Templates[pot.ID].SavedAmount
		assert.True(t, sum.Equal(stored), "pot %s: stored %s diverged from ledger %s", pot.Name, stored, sum)
		assert.False(t, stored.IsNegative(), "pot %s went negative", pot.Name)
	}
}
