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

func seedInstance(repo *testutil.MockExpenseInstanceRepository, userID uuid.UUID, day int, autoCharged bool) *domain.MonthlyExpenseInstance {
	inst := &domain.MonthlyExpenseInstance{
		UserID:      userID,
		Month:       "2025-03",
		Name:        "Facture",
		Amount:      decimal.NewFromInt(50),
		DueDate:     time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Status:      domain.ExpenseStatusUpcoming,
		AutoCharged: autoCharged,
	}
	repo.Create(context.Background(), inst)
	return inst
}

func TestSweep_MarksOverduePastDueDate(t *testing.T) {
	repo := testutil.NewMockExpenseInstanceRepository()
	svc := NewReconcilerService(repo)
	userID := uuid.New()
	inst := seedInstance(repo, userID, 10, false)

	moved, err := svc.Sweep(context.Background(), userID, util.Month{Year: 2025, Month: time.March},
		time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, domain.ExpenseStatusOverdue, repo.Instances[inst.ID].Status)
}

func TestSweep_DueTodayStaysUpcoming(t *testing.T) {
	repo := testutil.NewMockExpenseInstanceRepository()
	svc := NewReconcilerService(repo)
	userID := uuid.New()
	inst := seedInstance(repo, userID, 10, false)

	moved, err := svc.Sweep(context.Background(), userID, util.Month{Year: 2025, Month: time.March},
		time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	assert.Equal(t, domain.ExpenseStatusUpcoming, repo.Instances[inst.ID].Status)
}

func TestSweep_AutoChargedSettlesOnDueDate(t *testing.T) {
	repo := testutil.NewMockExpenseInstanceRepository()
	svc := NewReconcilerService(repo)
	userID := uuid.New()
	inst := seedInstance(repo, userID, 10, true)

	// The sweep runs days later, but the payment is recorded on schedule.
	moved, err := svc.Sweep(context.Background(), userID, util.Month{Year: 2025, Month: time.March},
		time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	settled := repo.Instances[inst.ID]
	assert.Equal(t, domain.ExpenseStatusPaid, settled.Status)
	require.NotNil(t, settled.PaidAt)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *settled.PaidAt)
}

func TestSweep_Idempotent(t *testing.T) {
	repo := testutil.NewMockExpenseInstanceRepository()
	svc := NewReconcilerService(repo)
	userID := uuid.New()
	seedInstance(repo, userID, 10, false)

	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	month := util.Month{Year: 2025, Month: time.March}

	moved, err := svc.Sweep(context.Background(), userID, month, now)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	moved, err = svc.Sweep(context.Background(), userID, month, now)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}

func TestSweep_DeferredUntouched(t *testing.T) {
	repo := testutil.NewMockExpenseInstanceRepository()
	svc := NewReconcilerService(repo)
	userID := uuid.New()
	inst := seedInstance(repo, userID, 10, false)
	inst.Status = domain.ExpenseStatusDeferred

	moved, err := svc.Sweep(context.Background(), userID, util.Month{Year: 2025, Month: time.March},
		time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	assert.Equal(t, domain.ExpenseStatusDeferred, repo.Instances[inst.ID].Status)
}

func TestSweep_LostRaceSkippedSilently(t *testing.T) {
	repo := testutil.NewMockExpenseInstanceRepository()
	svc := NewReconcilerService(repo)
	userID := uuid.New()
	seedInstance(repo, userID, 10, false)

	// A concurrent writer moved the instance between the read and the
	// guarded update.
	repo.UpdateStatusFn = func(id int32, from []domain.ExpenseStatus, to domain.ExpenseStatus) (*domain.MonthlyExpenseInstance, error) {
		return nil, domain.ErrInstanceNotFound
	}

	moved, err := svc.Sweep(context.Background(), userID, util.Month{Year: 2025, Month: time.March},
		time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}
