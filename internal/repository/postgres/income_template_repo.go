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

const incomeTemplateColumns = `id, user_id, name, source, amount, estimated_amount, frequency, is_active, created_at, updated_at`

// IncomeTemplateRepository implements domain.IncomeTemplateRepository
// using PostgreSQL.
type IncomeTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeTemplateRepository creates a new IncomeTemplateRepository
func NewIncomeTemplateRepository(pool *pgxpool.Pool) *IncomeTemplateRepository {
	return &IncomeTemplateRepository{pool: pool}
}

// Create inserts a new income template
func (r *IncomeTemplateRepository) Create(ctx context.Context, t *domain.IncomeTemplate) (*domain.IncomeTemplate, error) {
	amount, err := nullableDecimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, err
	}
	estimated, err := nullableDecimalToPgNumeric(t.EstimatedAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO income_templates (user_id, name, source, amount, estimated_amount, frequency, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+incomeTemplateColumns,
		t.UserID, t.Name, t.Source, amount, estimated, string(t.Frequency), t.IsActive)

	return scanIncomeTemplate(row)
}

// GetByID retrieves an income template by ID
func (r *IncomeTemplateRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.IncomeTemplate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+incomeTemplateColumns+` FROM income_templates WHERE user_id = $1 AND id = $2`,
		userID, id)

	t, err := scanIncomeTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByUser retrieves the user's income templates
func (r *IncomeTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.IncomeTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incomeTemplateColumns+` FROM income_templates
		 WHERE user_id = $1 AND ($2 = false OR is_active)
		 ORDER BY name, id`,
		userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIncomeTemplates(rows)
}

// ListActiveFixed retrieves active templates with a fixed frequency
func (r *IncomeTemplateRepository) ListActiveFixed(ctx context.Context, userID uuid.UUID) ([]*domain.IncomeTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incomeTemplateColumns+` FROM income_templates
		 WHERE user_id = $1 AND is_active AND frequency <> $2
		 ORDER BY name, id`,
		userID, string(domain.IncomeFrequencyVariable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIncomeTemplates(rows)
}

// Update updates an income template
func (r *IncomeTemplateRepository) Update(ctx context.Context, t *domain.IncomeTemplate) (*domain.IncomeTemplate, error) {
	amount, err := nullableDecimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, err
	}
	estimated, err := nullableDecimalToPgNumeric(t.EstimatedAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE income_templates
		 SET name = $3, source = $4, amount = $5, estimated_amount = $6, frequency = $7, is_active = $8,
		     updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+incomeTemplateColumns,
		t.UserID, t.ID, t.Name, t.Source, amount, estimated, string(t.Frequency), t.IsActive)

	updated, err := scanIncomeTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeTemplateNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Deactivate soft-deletes an income template
func (r *IncomeTemplateRepository) Deactivate(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE income_templates SET is_active = false, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeTemplateNotFound
	}
	return nil
}

func scanIncomeTemplate(row pgx.Row) (*domain.IncomeTemplate, error) {
	var t domain.IncomeTemplate
	var amount, estimated pgtype.Numeric
	var frequency string

	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Source, &amount, &estimated, &frequency,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Amount = pgNumericToNullableDecimal(amount)
	t.EstimatedAmount = pgNumericToNullableDecimal(estimated)
	t.Frequency = domain.IncomeFrequency(frequency)
	return &t, nil
}

func collectIncomeTemplates(rows pgx.Rows) ([]*domain.IncomeTemplate, error) {
	var result []*domain.IncomeTemplate
	for rows.Next() {
		t, err := scanIncomeTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
