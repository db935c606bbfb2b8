package postgres

import (
	"context"
	"errors"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseTemplateColumns = `id, user_id, section_id, card_id, name, amount, type, frequency, anchor_day,
	auto_debit, due_date, next_due_date, target_amount, target_date, saved_amount,
	is_free_pot, is_active, created_at, updated_at`

// ExpenseTemplateRepository implements domain.ExpenseTemplateRepository
// using PostgreSQL.
type ExpenseTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseTemplateRepository creates a new ExpenseTemplateRepository
func NewExpenseTemplateRepository(pool *pgxpool.Pool) *ExpenseTemplateRepository {
	return &ExpenseTemplateRepository{pool: pool}
}

// Create inserts a new expense template
func (r *ExpenseTemplateRepository) Create(ctx context.Context, t *domain.ExpenseTemplate) (*domain.ExpenseTemplate, error) {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, err
	}
	targetAmount, err := nullableDecimalToPgNumeric(t.TargetAmount)
	if err != nil {
		return nil, err
	}
	savedAmount, err := decimalToPgNumeric(t.SavedAmount)
	if err != nil {
		return nil, err
	}

	var frequency pgtype.Text
	var anchorDay pgtype.Int4
	if t.Recurrence != nil {
		frequency = pgtype.Text{String: string(t.Recurrence.Frequency), Valid: true}
		anchorDay = pgtype.Int4{Int32: t.Recurrence.AnchorDay, Valid: true}
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO expense_templates (user_id, section_id, card_id, name, amount, type, frequency, anchor_day,
		                                auto_debit, due_date, next_due_date, target_amount, target_date, saved_amount,
		                                is_free_pot, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING `+expenseTemplateColumns,
		t.UserID, nullableInt4(t.SectionID), nullableInt4(t.CardID), t.Name, amount, string(t.Type),
		frequency, anchorDay, t.AutoDebit, nullableDate(t.DueDate), nullableDate(t.NextDueDate),
		targetAmount, nullableDate(t.TargetDate), savedAmount, t.IsFreePot, t.IsActive)

	return scanExpenseTemplate(row)
}

// GetByID retrieves an expense template by ID
func (r *ExpenseTemplateRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.ExpenseTemplate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+expenseTemplateColumns+` FROM expense_templates WHERE user_id = $1 AND id = $2`,
		userID, id)

	t, err := scanExpenseTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByUser retrieves the user's expense templates
func (r *ExpenseTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.ExpenseTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseTemplateColumns+` FROM expense_templates
		 WHERE user_id = $1 AND ($2 = false OR is_active)
		 ORDER BY name, id`,
		userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExpenseTemplates(rows)
}

// ListActiveByType retrieves active templates of one type
func (r *ExpenseTemplateRepository) ListActiveByType(ctx context.Context, userID uuid.UUID, typ domain.ExpenseType) ([]*domain.ExpenseTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseTemplateColumns+` FROM expense_templates
		 WHERE user_id = $1 AND type = $2 AND is_active
		 ORDER BY name, id`,
		userID, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExpenseTemplates(rows)
}

// Update updates an expense template
func (r *ExpenseTemplateRepository) Update(ctx context.Context, t *domain.ExpenseTemplate) (*domain.ExpenseTemplate, error) {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, err
	}
	targetAmount, err := nullableDecimalToPgNumeric(t.TargetAmount)
	if err != nil {
		return nil, err
	}
	savedAmount, err := decimalToPgNumeric(t.SavedAmount)
	if err != nil {
		return nil, err
	}

	var frequency pgtype.Text
	var anchorDay pgtype.Int4
	if t.Recurrence != nil {
		frequency = pgtype.Text{String: string(t.Recurrence.Frequency), Valid: true}
		anchorDay = pgtype.Int4{Int32: t.Recurrence.AnchorDay, Valid: true}
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE expense_templates
		 SET section_id = $3, card_id = $4, name = $5, amount = $6, frequency = $7, anchor_day = $8,
		     auto_debit = $9, due_date = $10, next_due_date = $11, target_amount = $12, target_date = $13,
		     saved_amount = $14, is_active = $15, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+expenseTemplateColumns,
		t.UserID, t.ID, nullableInt4(t.SectionID), nullableInt4(t.CardID), t.Name, amount,
		frequency, anchorDay, t.AutoDebit, nullableDate(t.DueDate), nullableDate(t.NextDueDate),
		targetAmount, nullableDate(t.TargetDate), savedAmount, t.IsActive)

	updated, err := scanExpenseTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseTemplateNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Deactivate soft-deletes an expense template
func (r *ExpenseTemplateRepository) Deactivate(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE expense_templates SET is_active = false, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseTemplateNotFound
	}
	return nil
}

// EnsureFreePot returns the user's free-savings pot, creating it on
// first access. The partial unique index makes concurrent first calls
// converge on a single row.
func (r *ExpenseTemplateRepository) EnsureFreePot(ctx context.Context, userID uuid.UUID) (*domain.ExpenseTemplate, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO expense_templates (user_id, name, type, is_free_pot, is_active)
		 VALUES ($1, $2, $3, true, true)
		 ON CONFLICT (user_id) WHERE is_free_pot DO NOTHING`,
		userID, "Épargne libre", string(domain.ExpenseTypePlanned))
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`SELECT `+expenseTemplateColumns+` FROM expense_templates
		 WHERE user_id = $1 AND is_free_pot`,
		userID)
	return scanExpenseTemplate(row)
}

func scanExpenseTemplate(row pgx.Row) (*domain.ExpenseTemplate, error) {
	var t domain.ExpenseTemplate
	var sectionID, cardID, anchorDay pgtype.Int4
	var amount, targetAmount, savedAmount pgtype.Numeric
	var frequency pgtype.Text
	var dueDate, nextDueDate, targetDate pgtype.Date
	var typ string

	err := row.Scan(&t.ID, &t.UserID, &sectionID, &cardID, &t.Name, &amount, &typ, &frequency, &anchorDay,
		&t.AutoDebit, &dueDate, &nextDueDate, &targetAmount, &targetDate, &savedAmount,
		&t.IsFreePot, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.SectionID = pgInt4ToNullable(sectionID)
	t.CardID = pgInt4ToNullable(cardID)
	t.Amount = pgNumericToDecimal(amount)
	t.Type = domain.ExpenseType(typ)
	if frequency.Valid && anchorDay.Valid {
		t.Recurrence = &domain.RecurrenceRule{
			Frequency: domain.Frequency(frequency.String),
			AnchorDay: anchorDay.Int32,
		}
	}
	t.DueDate = pgDateToNullable(dueDate)
	t.NextDueDate = pgDateToNullable(nextDueDate)
	t.TargetAmount = pgNumericToNullableDecimal(targetAmount)
	t.TargetDate = pgDateToNullable(targetDate)
	t.SavedAmount = pgNumericToDecimal(savedAmount)

	return &t, nil
}

func collectExpenseTemplates(rows pgx.Rows) ([]*domain.ExpenseTemplate, error) {
	var result []*domain.ExpenseTemplate
	for rows.Next() {
		t, err := scanExpenseTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
