package service

import (
	"context"
	"errors"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReconcilerService advances a month's instances against wall-clock
// time on read. There is no background scheduler; every month fetch
// runs a sweep first, so state is always current when observed.
type ReconcilerService struct {
	expenseInstanceRepo domain.ExpenseInstanceRepository
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(expenseInstanceRepo domain.ExpenseInstanceRepository) *ReconcilerService {
	return &ReconcilerService{expenseInstanceRepo: expenseInstanceRepo}
}

// Sweep applies clock transitions to the month's upcoming instances and
// returns how many moved. A transition lost to a concurrent sweep or a
// manual action is skipped silently; the winner's state stands.
func (s *ReconcilerService) Sweep(ctx context.Context, userID uuid.UUID, month util.Month, now time.Time) (int, error) {
	instances, err := s.expenseInstanceRepo.ListByMonth(ctx, userID, month.String())
	if err != nil {
		return 0, err
	}

	today := util.Truncate(now)
	moved := 0
	for _, inst := range instances {
		next := *inst
		if !next.ApplyClock(today) {
			continue
		}

		_, err := s.expenseInstanceRepo.UpdateStatus(ctx, userID, inst.ID,
			[]domain.ExpenseStatus{domain.ExpenseStatusUpcoming}, next.Status, next.PaidAt)
		if err != nil {
			if errors.Is(err, domain.ErrInstanceNotFound) {
				continue
			}
			return moved, err
		}
		moved++
	}

	if moved > 0 {
		log.Debug().
			Str("user_id", userID.String()).
			Str("month", month.String()).
			Int("moved", moved).
			Msg("Swept monthly instances")
	}

	return moved, nil
}
