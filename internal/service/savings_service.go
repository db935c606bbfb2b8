package service

import (
	"context"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SavingsService handles savings pots and their contribution ledger.
// Pot balances are denormalized running totals over the signed
// contribution ledger; every write moves both together.
type SavingsService struct {
	templateRepo domain.ExpenseTemplateRepository
	savingsRepo  domain.SavingsRepository
}

// NewSavingsService creates a new SavingsService
func NewSavingsService(templateRepo domain.ExpenseTemplateRepository, savingsRepo domain.SavingsRepository) *SavingsService {
	return &SavingsService{templateRepo: templateRepo, savingsRepo: savingsRepo}
}

// GetPots retrieves the user's active savings pots
func (s *SavingsService) GetPots(ctx context.Context, userID uuid.UUID) ([]*domain.ExpenseTemplate, error) {
	return s.templateRepo.ListActiveByType(ctx, userID, domain.ExpenseTypePlanned)
}

// GetFreePot returns the user's free-savings pot, creating it lazily
func (s *SavingsService) GetFreePot(ctx context.Context, userID uuid.UUID) (*domain.ExpenseTemplate, error) {
	return s.templateRepo.EnsureFreePot(ctx, userID)
}

func (s *SavingsService) getPot(ctx context.Context, userID uuid.UUID, potID int32) (*domain.ExpenseTemplate, error) {
	pot, err := s.templateRepo.GetByID(ctx, userID, potID)
	if err != nil {
		if err == domain.ErrExpenseTemplateNotFound {
			return nil, domain.ErrPotNotFound
		}
		return nil, err
	}
	if !pot.IsPot() {
		return nil, domain.ErrPotNotSavings
	}
	return pot, nil
}

// Contribute appends a positive contribution to a pot and moves its
// balance
func (s *SavingsService) Contribute(ctx context.Context, userID uuid.UUID, potID int32, amount decimal.Decimal, note *string) (*domain.SavingsContribution, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.getPot(ctx, userID, potID); err != nil {
		return nil, err
	}

	return s.savingsRepo.CreateContribution(ctx, &domain.SavingsContribution{
		UserID: userID,
		PotID:  potID,
		Amount: amount,
		Note:   note,
	})
}

// TransferResult holds the two legs of a completed transfer
type TransferResult struct {
	TransferID uuid.UUID                   `json:"transferId"`
	Debit      *domain.SavingsContribution `json:"debit"`
	Credit     *domain.SavingsContribution `json:"credit"`
}

// Transfer moves funds between two pots as a linked pair of ledger
// entries sharing one transfer ID and one timestamp. The source pot
// cannot be overdrawn: the check here runs against the ledger sum, and
// the repository re-checks the stored balance inside the transfer
// transaction so a concurrent debit cannot slip past it.
func (s *SavingsService) Transfer(ctx context.Context, userID uuid.UUID, fromPotID, toPotID int32, amount decimal.Decimal, note *string) (*TransferResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if fromPotID == toPotID {
		return nil, domain.ErrSamePot
	}
	if _, err := s.getPot(ctx, userID, fromPotID); err != nil {
		return nil, err
	}
	if _, err := s.getPot(ctx, userID, toPotID); err != nil {
		return nil, err
	}

	balance, err := s.savingsRepo.SumByPot(ctx, userID, fromPotID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, domain.ErrInsufficientFunds
	}

	transferID := uuid.New()
	now := time.Now()
	debit, credit, err := s.savingsRepo.CreateTransferPair(ctx,
		&domain.SavingsContribution{
			UserID:     userID,
			PotID:      fromPotID,
			Amount:     amount.Neg(),
			Note:       note,
			TransferID: &transferID,
			CreatedAt:  now,
		},
		&domain.SavingsContribution{
			UserID:     userID,
			PotID:      toPotID,
			Amount:     amount,
			Note:       note,
			TransferID: &transferID,
			CreatedAt:  now,
		})
	if err != nil {
		return nil, err
	}

	return &TransferResult{TransferID: transferID, Debit: debit, Credit: credit}, nil
}

// GetHistory returns a pot's contributions, newest first
func (s *SavingsService) GetHistory(ctx context.Context, userID uuid.UUID, potID int32) ([]*domain.SavingsContribution, error) {
	if _, err := s.getPot(ctx, userID, potID); err != nil {
		return nil, err
	}
	return s.savingsRepo.ListByPot(ctx, userID, potID)
}

// PotReconcileResult reports a pot balance replay check
type PotReconcileResult struct {
	PotID    int32           `json:"potId"`
	Stored   decimal.Decimal `json:"stored"`
	Replayed decimal.Decimal `json:"replayed"`
	Repaired bool            `json:"repaired"`
}

// Reconcile replays a pot's ledger and repairs the denormalized balance
// when it diverged
func (s *SavingsService) Reconcile(ctx context.Context, userID uuid.UUID, potID int32) (*PotReconcileResult, error) {
	pot, err := s.getPot(ctx, userID, potID)
	if err != nil {
		return nil, err
	}

	replayed, err := s.savingsRepo.SumByPot(ctx, userID, potID)
	if err != nil {
		return nil, err
	}

	result := &PotReconcileResult{
		PotID:    potID,
		Stored:   pot.SavedAmount,
		Replayed: replayed,
	}

	if !pot.SavedAmount.Equal(replayed) {
		log.Error().
			Str("user_id", userID.String()).
			Int32("pot_id", potID).
			Str("stored", pot.SavedAmount.String()).
			Str("replayed", replayed.String()).
			Msg("Pot balance diverged from ledger replay")

		if err := s.savingsRepo.SetPotBalance(ctx, userID, potID, replayed); err != nil {
			return nil, err
		}
		result.Repaired = true
	}

	return result, nil
}
