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
)

const expenseInstanceColumns = `id, user_id, template_id, debt_id, section_id, card_id, month, name, amount,
	due_date, status, paid_at, auto_charged, is_planned, created_at, updated_at`

// ExpenseInstanceRepository implements domain.ExpenseInstanceRepository
// using PostgreSQL.
type ExpenseInstanceRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseInstanceRepository creates a new ExpenseInstanceRepository
func NewExpenseInstanceRepository(pool *pgxpool.Pool) *ExpenseInstanceRepository {
	return &ExpenseInstanceRepository{pool: pool}
}

// InsertIfAbsent inserts the instance unless its month key is already
// taken. The partial unique indexes arbitrate concurrent generators; a
// losing insert reports created=false with no error.
func (r *ExpenseInstanceRepository) InsertIfAbsent(ctx context.Context, inst *domain.MonthlyExpenseInstance) (bool, error) {
	amount, err := decimalToPgNumeric(inst.Amount)
	if err != nil {
		return false, err
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO monthly_expense_instances
		   (user_id, template_id, debt_id, section_id, card_id, month, name, amount,
		    due_date, status, paid_at, auto_charged, is_planned)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT DO NOTHING`,
		inst.UserID, nullableInt4(inst.TemplateID), nullableInt4(inst.DebtID),
		nullableInt4(inst.SectionID), nullableInt4(inst.CardID), inst.Month, inst.Name, amount,
		inst.DueDate, string(inst.Status), nullableTimestamptz(inst.PaidAt), inst.AutoCharged, inst.IsPlanned)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Create inserts an ad-hoc instance
func (r *ExpenseInstanceRepository) Create(ctx context.Context, inst *domain.MonthlyExpenseInstance) (*domain.MonthlyExpenseInstance, error) {
	amount, err := decimalToPgNumeric(inst.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO monthly_expense_instances
		   (user_id, template_id, debt_id, section_id, card_id, month, name, amount,
		    due_date, status, paid_at, auto_charged, is_planned)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+expenseInstanceColumns,
		inst.UserID, nullableInt4(inst.TemplateID), nullableInt4(inst.DebtID),
		nullableInt4(inst.SectionID), nullableInt4(inst.CardID), inst.Month, inst.Name, amount,
		inst.DueDate, string(inst.Status), nullableTimestamptz(inst.PaidAt), inst.AutoCharged, inst.IsPlanned)

	return scanExpenseInstance(row)
}

// GetByID retrieves an expense instance by ID
func (r *ExpenseInstanceRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.MonthlyExpenseInstance, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+expenseInstanceColumns+` FROM monthly_expense_instances
		 WHERE user_id = $1 AND id = $2`,
		userID, id)

	inst, err := scanExpenseInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, err
	}
	return inst, nil
}

// ListByMonth retrieves the user's expense instances for a month
func (r *ExpenseInstanceRepository) ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*domain.MonthlyExpenseInstance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseInstanceColumns+` FROM monthly_expense_instances
		 WHERE user_id = $1 AND month = $2
		 ORDER BY due_date, id`,
		userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MonthlyExpenseInstance
	for rows.Next() {
		inst, err := scanExpenseInstance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, rows.Err()
}

// UpdateStatus transitions the instance, guarded on its current status.
// Zero rows means the row is gone or the guard failed, either because
// the status already moved under a concurrent writer.
func (r *ExpenseInstanceRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, id int32, from []domain.ExpenseStatus, to domain.ExpenseStatus, paidAt *time.Time) (*domain.MonthlyExpenseInstance, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE monthly_expense_instances
		 SET status = $4, paid_at = $5, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND status = ANY($3)
		 RETURNING `+expenseInstanceColumns,
		userID, id, fromStrs, string(to), nullableTimestamptz(paidAt))

	inst, err := scanExpenseInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, err
	}
	return inst, nil
}

func scanExpenseInstance(row pgx.Row) (*domain.MonthlyExpenseInstance, error) {
	var inst domain.MonthlyExpenseInstance
	var templateID, debtID, sectionID, cardID pgtype.Int4
	var amount pgtype.Numeric
	var paidAt pgtype.Timestamptz
	var status string

	err := row.Scan(&inst.ID, &inst.UserID, &templateID, &debtID, &sectionID, &cardID,
		&inst.Month, &inst.Name, &amount, &inst.DueDate, &status, &paidAt,
		&inst.AutoCharged, &inst.IsPlanned, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		return nil, err
	}

	inst.TemplateID = pgInt4ToNullable(templateID)
	inst.DebtID = pgInt4ToNullable(debtID)
	inst.SectionID = pgInt4ToNullable(sectionID)
	inst.CardID = pgInt4ToNullable(cardID)
	inst.Amount = pgNumericToDecimal(amount)
	inst.Status = domain.ExpenseStatus(status)
	inst.PaidAt = pgTimestamptzToNullable(paidAt)
	return &inst, nil
}
