package service

import (
	"context"
	"strings"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DebtService handles debts and their amortization ledger. The stored
// remaining balance is a running total over the append-only transaction
// log; every mutation goes through the log so the balance stays
// re-derivable by replay.
type DebtService struct {
	debtRepo domain.DebtRepository
}

// NewDebtService creates a new DebtService
func NewDebtService(debtRepo domain.DebtRepository) *DebtService {
	return &DebtService{debtRepo: debtRepo}
}

// CreateDebtInput holds the input for creating a debt
type CreateDebtInput struct {
	Name             string
	OriginalAmount   decimal.Decimal
	RemainingBalance *decimal.Decimal
	InterestRate     *decimal.Decimal
	PaymentAmount    decimal.Decimal
	Recurrence       domain.RecurrenceRule
	NextDueDate      *time.Time
	AutoDebit        bool
}

// CreateDebt creates a new debt. The remaining balance defaults to the
// original amount when omitted. A mid-life starting balance is recorded
// as an opening adjustment in the ledger rather than written directly,
// so the balance replays from the original amount from day one.
func (s *DebtService) CreateDebt(ctx context.Context, userID uuid.UUID, input CreateDebtInput) (*domain.DebtTemplate, error) {
	starting := input.OriginalAmount
	if input.RemainingBalance != nil {
		starting = *input.RemainingBalance
	}
	if starting.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	debt := &domain.DebtTemplate{
		UserID:           userID,
		Name:             strings.TrimSpace(input.Name),
		OriginalAmount:   input.OriginalAmount,
		RemainingBalance: input.OriginalAmount,
		InterestRate:     input.InterestRate,
		PaymentAmount:    input.PaymentAmount,
		Recurrence:       input.Recurrence,
		NextDueDate:      input.NextDueDate,
		AutoDebit:        input.AutoDebit,
		IsActive:         true,
	}
	if err := debt.Validate(); err != nil {
		return nil, err
	}

	created, err := s.debtRepo.Create(ctx, debt)
	if err != nil {
		return nil, err
	}
	if starting.Equal(input.OriginalAmount) {
		return created, nil
	}

	txn := &domain.DebtTransaction{
		UserID: userID,
		DebtID: created.ID,
		Type:   domain.DebtTransactionPayment,
		Amount: input.OriginalAmount.Sub(starting),
		Month:  util.MonthOf(time.Now()).String(),
		Source: domain.DebtSourceOpeningBalance,
	}
	if txn.Amount.IsNegative() {
		txn.Type = domain.DebtTransactionCharge
		txn.Amount = txn.Amount.Neg()
	}
	if _, err := s.debtRepo.ApplyTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return s.debtRepo.GetByID(ctx, userID, created.ID)
}

// GetDebt retrieves a debt by ID
func (s *DebtService) GetDebt(ctx context.Context, userID uuid.UUID, id int32) (*domain.DebtTemplate, error) {
	return s.debtRepo.GetByID(ctx, userID, id)
}

// GetDebts retrieves the user's debts
func (s *DebtService) GetDebts(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.DebtTemplate, error) {
	return s.debtRepo.ListByUser(ctx, userID, activeOnly)
}

// UpdateDebtInput holds the user-editable debt fields
type UpdateDebtInput struct {
	Name          string
	InterestRate  *decimal.Decimal
	PaymentAmount decimal.Decimal
	Recurrence    domain.RecurrenceRule
	NextDueDate   *time.Time
	AutoDebit     bool
}

// UpdateDebt updates a debt's terms. The balance is not editable here;
// it only moves through the transaction log or a reconcile repair.
func (s *DebtService) UpdateDebt(ctx context.Context, userID uuid.UUID, id int32, input UpdateDebtInput) (*domain.DebtTemplate, error) {
	existing, err := s.debtRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.InterestRate = input.InterestRate
	existing.PaymentAmount = input.PaymentAmount
	existing.Recurrence = input.Recurrence
	existing.NextDueDate = input.NextDueDate
	existing.AutoDebit = input.AutoDebit

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	return s.debtRepo.Update(ctx, existing)
}

// DeactivateDebt soft-deletes a debt
func (s *DebtService) DeactivateDebt(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.debtRepo.Deactivate(ctx, userID, id)
}

// PostTransaction appends a payment or charge to the debt's ledger and
// moves the balance. A payment that would overshoot clamps the balance
// at zero and retires the debt; a charge on a retired debt reactivates
// it.
func (s *DebtService) PostTransaction(ctx context.Context, userID uuid.UUID, debtID int32, txnType domain.DebtTransactionType, amount decimal.Decimal, month util.Month, source string) (*domain.DebtTransaction, error) {
	if !txnType.Valid() {
		return nil, domain.ErrDebtTransactionTypeInvalid
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.debtRepo.GetByID(ctx, userID, debtID); err != nil {
		return nil, err
	}

	created, err := s.debtRepo.ApplyTransaction(ctx, &domain.DebtTransaction{
		UserID: userID,
		DebtID: debtID,
		Type:   txnType,
		Amount: amount,
		Month:  month.String(),
		Source: source,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("user_id", userID.String()).
		Int32("debt_id", debtID).
		Str("type", string(txnType)).
		Str("amount", amount.String()).
		Msg("Posted debt transaction")

	return created, nil
}

// MakeExtraPayment appends an out-of-schedule payment
func (s *DebtService) MakeExtraPayment(ctx context.Context, userID uuid.UUID, debtID int32, amount decimal.Decimal, month util.Month) (*domain.DebtTransaction, error) {
	return s.PostTransaction(ctx, userID, debtID, domain.DebtTransactionPayment, amount, month, domain.DebtSourceExtraPayment)
}

// GetTransactions returns the debt's ledger, oldest first
func (s *DebtService) GetTransactions(ctx context.Context, userID uuid.UUID, debtID int32) ([]*domain.DebtTransaction, error) {
	if _, err := s.debtRepo.GetByID(ctx, userID, debtID); err != nil {
		return nil, err
	}
	return s.debtRepo.ListTransactions(ctx, userID, debtID)
}

// DebtReconcileResult reports a balance replay check
type DebtReconcileResult struct {
	DebtID   int32           `json:"debtId"`
	Stored   decimal.Decimal `json:"stored"`
	Replayed decimal.Decimal `json:"replayed"`
	Repaired bool            `json:"repaired"`
}

// Reconcile replays the debt's ledger against its original amount and
// repairs the stored balance when it diverged. Divergence is a bug
// signal, so it is logged loudly even after the repair.
func (s *DebtService) Reconcile(ctx context.Context, userID uuid.UUID, debtID int32) (*DebtReconcileResult, error) {
	debt, err := s.debtRepo.GetByID(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	txns, err := s.debtRepo.ListTransactions(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}

	replayed := domain.ReplayBalance(debt.OriginalAmount, txns)
	result := &DebtReconcileResult{
		DebtID:   debtID,
		Stored:   debt.RemainingBalance,
		Replayed: replayed,
	}

	if !debt.RemainingBalance.Equal(replayed) {
		log.Error().
			Str("user_id", userID.String()).
			Int32("debt_id", debtID).
			Str("stored", debt.RemainingBalance.String()).
			Str("replayed", replayed.String()).
			Msg("Debt balance diverged from ledger replay")

		if err := s.debtRepo.SetBalance(ctx, userID, debtID, replayed, replayed.IsPositive()); err != nil {
			return nil, err
		}
		result.Repaired = true
	}

	return result, nil
}
