package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const debtColumns = `id, user_id, name, original_amount, remaining_balance, interest_rate, payment_amount,
	frequency, anchor_day, next_due_date, auto_debit, is_active, created_at, updated_at`

const debtTransactionColumns = `id, user_id, debt_id, type, amount, month, source, created_at`

// DebtRepository implements domain.DebtRepository using PostgreSQL. The
// settle and revert operations touch the instance, the transaction log
// and the stored balance inside a single database transaction.
type DebtRepository struct {
	pool *pgxpool.Pool
}

// NewDebtRepository creates a new DebtRepository
func NewDebtRepository(pool *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{pool: pool}
}

// Create inserts a new debt
func (r *DebtRepository) Create(ctx context.Context, d *domain.DebtTemplate) (*domain.DebtTemplate, error) {
	original, err := decimalToPgNumeric(d.OriginalAmount)
	if err != nil {
		return nil, err
	}
	remaining, err := decimalToPgNumeric(d.RemainingBalance)
	if err != nil {
		return nil, err
	}
	interest, err := nullableDecimalToPgNumeric(d.InterestRate)
	if err != nil {
		return nil, err
	}
	payment, err := decimalToPgNumeric(d.PaymentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO debts (user_id, name, original_amount, remaining_balance, interest_rate, payment_amount,
		                    frequency, anchor_day, next_due_date, auto_debit, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+debtColumns,
		d.UserID, d.Name, original, remaining, interest, payment,
		string(d.Recurrence.Frequency), d.Recurrence.AnchorDay, nullableDate(d.NextDueDate),
		d.AutoDebit, d.IsActive)

	return scanDebt(row)
}

// GetByID retrieves a debt by ID
func (r *DebtRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.DebtTemplate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE user_id = $1 AND id = $2`,
		userID, id)

	d, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDebtNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByUser retrieves the user's debts
func (r *DebtRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.DebtTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+debtColumns+` FROM debts
		 WHERE user_id = $1 AND ($2 = false OR is_active)
		 ORDER BY name, id`,
		userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DebtTemplate
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// Update updates a debt's user-editable fields
func (r *DebtRepository) Update(ctx context.Context, d *domain.DebtTemplate) (*domain.DebtTemplate, error) {
	original, err := decimalToPgNumeric(d.OriginalAmount)
	if err != nil {
		return nil, err
	}
	remaining, err := decimalToPgNumeric(d.RemainingBalance)
	if err != nil {
		return nil, err
	}
	interest, err := nullableDecimalToPgNumeric(d.InterestRate)
	if err != nil {
		return nil, err
	}
	payment, err := decimalToPgNumeric(d.PaymentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE debts
		 SET name = $3, original_amount = $4, remaining_balance = $5, interest_rate = $6,
		     payment_amount = $7, frequency = $8, anchor_day = $9, next_due_date = $10,
		     auto_debit = $11, is_active = $12, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+debtColumns,
		d.UserID, d.ID, d.Name, original, remaining, interest, payment,
		string(d.Recurrence.Frequency), d.Recurrence.AnchorDay, nullableDate(d.NextDueDate),
		d.AutoDebit, d.IsActive)

	updated, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDebtNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Deactivate soft-deletes a debt
func (r *DebtRepository) Deactivate(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE debts SET is_active = false, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}

// ApplyTransaction appends the ledger row and moves the stored balance
// and active flag in one transaction
func (r *DebtRepository) ApplyTransaction(ctx context.Context, txn *domain.DebtTransaction) (*domain.DebtTransaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := insertDebtTransaction(ctx, tx, txn)
	if err != nil {
		return nil, err
	}
	if err := updateDebtBalance(ctx, tx, txn.UserID, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// ListTransactions returns the debt's ledger, oldest first
func (r *DebtRepository) ListTransactions(ctx context.Context, userID uuid.UUID, debtID int32) ([]*domain.DebtTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+debtTransactionColumns+` FROM debt_transactions
		 WHERE user_id = $1 AND debt_id = $2
		 ORDER BY created_at, id`,
		userID, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DebtTransaction
	for rows.Next() {
		t, err := scanDebtTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// SettleInstance marks a debt-linked instance paid, appends the payment
// row and moves the balance, atomically. The status guard on the
// instance row rejects already-settled instances so a concurrent settle
// cannot double-decrement the balance.
func (r *DebtRepository) SettleInstance(ctx context.Context, userID uuid.UUID, instanceID int32, paidAt time.Time, txn *domain.DebtTransaction) (*domain.MonthlyExpenseInstance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`UPDATE monthly_expense_instances
		 SET status = $3, paid_at = $4, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND status <> $3
		 RETURNING `+expenseInstanceColumns,
		userID, instanceID, string(domain.ExpenseStatusPaid), paidAt)

	inst, err := scanExpenseInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceAlreadyPaid
		}
		return nil, err
	}

	if _, err := insertDebtTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := updateDebtBalance(ctx, tx, userID, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// RevertInstance reverts a paid debt-linked instance to upcoming,
// appends the compensating reversal row and restores the balance,
// atomically
func (r *DebtRepository) RevertInstance(ctx context.Context, userID uuid.UUID, instanceID int32, txn *domain.DebtTransaction) (*domain.MonthlyExpenseInstance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`UPDATE monthly_expense_instances
		 SET status = $3, paid_at = NULL, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND status = $4
		 RETURNING `+expenseInstanceColumns,
		userID, instanceID, string(domain.ExpenseStatusUpcoming), string(domain.ExpenseStatusPaid))

	inst, err := scanExpenseInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, err
	}

	if _, err := insertDebtTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := updateDebtBalance(ctx, tx, userID, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// SetBalance overwrites the stored balance (reconciliation repair)
func (r *DebtRepository) SetBalance(ctx context.Context, userID uuid.UUID, debtID int32, balance decimal.Decimal, active bool) error {
	num, err := decimalToPgNumeric(balance)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE debts SET remaining_balance = $3, is_active = $4, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, debtID, num, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}

func insertDebtTransaction(ctx context.Context, tx pgx.Tx, txn *domain.DebtTransaction) (*domain.DebtTransaction, error) {
	amount, err := decimalToPgNumeric(txn.Amount)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO debt_transactions (user_id, debt_id, type, amount, month, source)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+debtTransactionColumns,
		txn.UserID, txn.DebtID, string(txn.Type), amount, txn.Month, txn.Source)

	return scanDebtTransaction(row)
}

// updateDebtBalance moves the stored balance by the transaction's delta
// relative to the current row value, never from a balance read earlier
// in the request. Payments clamp at zero and retire the debt there;
// charges above zero reactivate it.
func updateDebtBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, txn *domain.DebtTransaction) error {
	num, err := decimalToPgNumeric(txn.Amount)
	if err != nil {
		return err
	}

	query := `UPDATE debts
	 SET remaining_balance = GREATEST(remaining_balance - $3, 0),
	     is_active = remaining_balance - $3 > 0,
	     updated_at = now()
	 WHERE user_id = $1 AND id = $2`
	if txn.Type == domain.DebtTransactionCharge {
		query = `UPDATE debts
	 SET remaining_balance = remaining_balance + $3,
	     is_active = remaining_balance + $3 > 0,
	     updated_at = now()
	 WHERE user_id = $1 AND id = $2`
	}

	tag, err := tx.Exec(ctx, query, userID, txn.DebtID, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}

func scanDebt(row pgx.Row) (*domain.DebtTemplate, error) {
	var d domain.DebtTemplate
	var original, remaining, interest, payment pgtype.Numeric
	var frequency string
	var nextDueDate pgtype.Date

	err := row.Scan(&d.ID, &d.UserID, &d.Name, &original, &remaining, &interest, &payment,
		&frequency, &d.Recurrence.AnchorDay, &nextDueDate, &d.AutoDebit, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	d.OriginalAmount = pgNumericToDecimal(original)
	d.RemainingBalance = pgNumericToDecimal(remaining)
	d.InterestRate = pgNumericToNullableDecimal(interest)
	d.PaymentAmount = pgNumericToDecimal(payment)
	d.Recurrence.Frequency = domain.Frequency(frequency)
	d.NextDueDate = pgDateToNullable(nextDueDate)
	return &d, nil
}

func scanDebtTransaction(row pgx.Row) (*domain.DebtTransaction, error) {
	var t domain.DebtTransaction
	var amount pgtype.Numeric
	var typ string

	err := row.Scan(&t.ID, &t.UserID, &t.DebtID, &typ, &amount, &t.Month, &t.Source, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.Type = domain.DebtTransactionType(typ)
	t.Amount = pgNumericToDecimal(amount)
	return &t, nil
}
