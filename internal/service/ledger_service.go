package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService handles manual status transitions on monthly instances:
// paying, deferring, reverting, ad-hoc spend, and income receipts.
// Debt-linked instances route through the debt repository so the
// instance status, the transaction log and the stored balance move
// together or not at all.
type LedgerService struct {
	expenseInstanceRepo domain.ExpenseInstanceRepository
	incomeInstanceRepo  domain.IncomeInstanceRepository
	incomeTemplateRepo  domain.IncomeTemplateRepository
	debtRepo            domain.DebtRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	expenseInstanceRepo domain.ExpenseInstanceRepository,
	incomeInstanceRepo domain.IncomeInstanceRepository,
	incomeTemplateRepo domain.IncomeTemplateRepository,
	debtRepo domain.DebtRepository,
) *LedgerService {
	return &LedgerService{
		expenseInstanceRepo: expenseInstanceRepo,
		incomeInstanceRepo:  incomeInstanceRepo,
		incomeTemplateRepo:  incomeTemplateRepo,
		debtRepo:            debtRepo,
	}
}

var notPaidStatuses = []domain.ExpenseStatus{
	domain.ExpenseStatusUpcoming,
	domain.ExpenseStatusOverdue,
	domain.ExpenseStatusDeferred,
}

// MarkPaid marks an expense instance paid. For a debt-linked instance
// this also appends the payment to the debt's ledger and moves the
// balance, atomically; paying off the balance retires the debt.
func (s *LedgerService) MarkPaid(ctx context.Context, userID uuid.UUID, instanceID int32, paidAt time.Time) (*domain.MonthlyExpenseInstance, error) {
	inst, err := s.expenseInstanceRepo.GetByID(ctx, userID, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Status == domain.ExpenseStatusPaid {
		return nil, domain.ErrInstanceAlreadyPaid
	}

	if inst.Origin() == domain.OriginDebt {
		txn := &domain.DebtTransaction{
			UserID: userID,
			DebtID: *inst.DebtID,
			Type:   domain.DebtTransactionPayment,
			Amount: inst.Amount,
			Month:  inst.Month,
			Source: domain.DebtSourceMonthlyPayment,
		}
		return s.debtRepo.SettleInstance(ctx, userID, instanceID, paidAt, txn)
	}

	updated, err := s.expenseInstanceRepo.UpdateStatus(ctx, userID, instanceID,
		notPaidStatuses, domain.ExpenseStatusPaid, &paidAt)
	if err != nil {
		// The row existed above, so a failed guard means a concurrent
		// writer paid it first.
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return nil, domain.ErrInstanceAlreadyPaid
		}
		return nil, err
	}
	return updated, nil
}

// MarkDeferred pushes an instance to deferred. Paid instances must be
// reverted first.
func (s *LedgerService) MarkDeferred(ctx context.Context, userID uuid.UUID, instanceID int32) (*domain.MonthlyExpenseInstance, error) {
	inst, err := s.expenseInstanceRepo.GetByID(ctx, userID, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.CanMarkDeferred() {
		return nil, domain.ErrInstancePaid
	}

	updated, err := s.expenseInstanceRepo.UpdateStatus(ctx, userID, instanceID,
		notPaidStatuses, domain.ExpenseStatusDeferred, nil)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return nil, domain.ErrInstancePaid
		}
		return nil, err
	}
	return updated, nil
}

// RevertToUpcoming puts an instance back to upcoming and clears its
// paid timestamp. Reverting a paid debt-linked instance appends a
// compensating reversal charge so the debt's ledger stays append-only
// and its balance replays correctly; the restored balance reactivates a
// retired debt.
func (s *LedgerService) RevertToUpcoming(ctx context.Context, userID uuid.UUID, instanceID int32) (*domain.MonthlyExpenseInstance, error) {
	inst, err := s.expenseInstanceRepo.GetByID(ctx, userID, instanceID)
	if err != nil {
		return nil, err
	}

	if inst.Status == domain.ExpenseStatusPaid && inst.Origin() == domain.OriginDebt {
		txn := &domain.DebtTransaction{
			UserID: userID,
			DebtID: *inst.DebtID,
			Type:   domain.DebtTransactionCharge,
			Amount: inst.Amount,
			Month:  inst.Month,
			Source: domain.DebtSourcePaymentReversal,
		}
		return s.debtRepo.RevertInstance(ctx, userID, instanceID, txn)
	}

	return s.expenseInstanceRepo.UpdateStatus(ctx, userID, instanceID,
		[]domain.ExpenseStatus{
			domain.ExpenseStatusPaid,
			domain.ExpenseStatusOverdue,
			domain.ExpenseStatusDeferred,
		}, domain.ExpenseStatusUpcoming, nil)
}

// CreateAdhocExpenseInput holds the input for recording unplanned spend
type CreateAdhocExpenseInput struct {
	SectionID *int32
	CardID    *int32
	Name      string
	Amount    decimal.Decimal
	DueDate   time.Time
	// Paid records the spend as already settled on its due date.
	Paid bool
}

// CreateAdhocExpense records a one-off, templateless expense directly
// in a month's ledger
func (s *LedgerService) CreateAdhocExpense(ctx context.Context, userID uuid.UUID, month util.Month, input CreateAdhocExpenseInput) (*domain.MonthlyExpenseInstance, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	inst := &domain.MonthlyExpenseInstance{
		UserID:    userID,
		SectionID: input.SectionID,
		CardID:    input.CardID,
		Month:     month.String(),
		Name:      name,
		Amount:    input.Amount,
		DueDate:   util.Truncate(input.DueDate),
		Status:    domain.ExpenseStatusUpcoming,
		IsPlanned: false,
	}
	if input.Paid {
		inst.Status = domain.ExpenseStatusPaid
		paidAt := inst.DueDate
		inst.PaidAt = &paidAt
	}

	return s.expenseInstanceRepo.Create(ctx, inst)
}

// MarkIncomeReceived records the actual amount on an income instance.
// An actual below the expected amount marks the instance partial.
func (s *LedgerService) MarkIncomeReceived(ctx context.Context, userID uuid.UUID, instanceID int32, actual decimal.Decimal, receivedAt time.Time) (*domain.MonthlyIncomeInstance, error) {
	if actual.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	inst, err := s.incomeInstanceRepo.GetByID(ctx, userID, instanceID)
	if err != nil {
		return nil, err
	}

	status := domain.IncomeStatusReceived
	if actual.LessThan(inst.ExpectedAmount) {
		status = domain.IncomeStatusPartial
	}

	return s.incomeInstanceRepo.MarkReceived(ctx, userID, instanceID, actual, status, receivedAt)
}

// MarkVariableIncomeReceived records a receipt for a variable income,
// creating the month's instance on first receipt and overwriting the
// actual on a repeat. Variable incomes are always fully received: the
// expected amount tracks the actual, so there is nothing to fall short
// of and the template's estimate never leaks into the instance.
func (s *LedgerService) MarkVariableIncomeReceived(ctx context.Context, userID uuid.UUID, incomeID int32, month util.Month, actual decimal.Decimal, receivedAt time.Time) (*domain.MonthlyIncomeInstance, error) {
	if actual.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	income, err := s.incomeTemplateRepo.GetByID(ctx, userID, incomeID)
	if err != nil {
		return nil, err
	}
	if !income.IsVariable() {
		return nil, domain.ErrIncomeNotVariable
	}

	return s.incomeInstanceRepo.UpsertReceived(ctx, &domain.MonthlyIncomeInstance{
		UserID:         userID,
		IncomeID:       incomeID,
		Month:          month.String(),
		ExpectedAmount: actual,
		ActualAmount:   &actual,
		Status:         domain.IncomeStatusReceived,
		ReceivedAt:     &receivedAt,
	})
}
