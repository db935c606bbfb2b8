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

const incomeInstanceColumns = `id, user_id, income_id, month, expected_amount, actual_amount, status, received_at, created_at, updated_at`

// IncomeInstanceRepository implements domain.IncomeInstanceRepository
// using PostgreSQL.
type IncomeInstanceRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeInstanceRepository creates a new IncomeInstanceRepository
func NewIncomeInstanceRepository(pool *pgxpool.Pool) *IncomeInstanceRepository {
	return &IncomeInstanceRepository{pool: pool}
}

// InsertIfAbsent inserts the instance unless one exists for its
// (income, month) key; a losing concurrent insert is a silent no-op.
func (r *IncomeInstanceRepository) InsertIfAbsent(ctx context.Context, inst *domain.MonthlyIncomeInstance) (bool, error) {
	expected, err := decimalToPgNumeric(inst.ExpectedAmount)
	if err != nil {
		return false, err
	}
	actual, err := nullableDecimalToPgNumeric(inst.ActualAmount)
	if err != nil {
		return false, err
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO monthly_income_instances
		   (user_id, income_id, month, expected_amount, actual_amount, status, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (income_id, month) DO NOTHING`,
		inst.UserID, inst.IncomeID, inst.Month, expected, actual, string(inst.Status),
		nullableTimestamptz(inst.ReceivedAt))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID retrieves an income instance by ID
func (r *IncomeInstanceRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.MonthlyIncomeInstance, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+incomeInstanceColumns+` FROM monthly_income_instances
		 WHERE user_id = $1 AND id = $2`,
		userID, id)

	inst, err := scanIncomeInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeInstanceNotFound
		}
		return nil, err
	}
	return inst, nil
}

// ListByMonth retrieves the user's income instances for a month
func (r *IncomeInstanceRepository) ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*domain.MonthlyIncomeInstance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incomeInstanceColumns+` FROM monthly_income_instances
		 WHERE user_id = $1 AND month = $2
		 ORDER BY id`,
		userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MonthlyIncomeInstance
	for rows.Next() {
		inst, err := scanIncomeInstance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, rows.Err()
}

// MarkReceived records the actual amount and resulting status
func (r *IncomeInstanceRepository) MarkReceived(ctx context.Context, userID uuid.UUID, id int32, actual decimal.Decimal, status domain.IncomeStatus, receivedAt time.Time) (*domain.MonthlyIncomeInstance, error) {
	actualNum, err := decimalToPgNumeric(actual)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE monthly_income_instances
		 SET actual_amount = $3, status = $4, received_at = $5, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+incomeInstanceColumns,
		userID, id, actualNum, string(status), receivedAt)

	inst, err := scanIncomeInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeInstanceNotFound
		}
		return nil, err
	}
	return inst, nil
}

// UpsertReceived inserts or updates the instance keyed on
// (income, month). A repeated receipt for the same month overwrites the
// actual amount instead of duplicating the row.
func (r *IncomeInstanceRepository) UpsertReceived(ctx context.Context, inst *domain.MonthlyIncomeInstance) (*domain.MonthlyIncomeInstance, error) {
	expected, err := decimalToPgNumeric(inst.ExpectedAmount)
	if err != nil {
		return nil, err
	}
	actual, err := nullableDecimalToPgNumeric(inst.ActualAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO monthly_income_instances
		   (user_id, income_id, month, expected_amount, actual_amount, status, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (income_id, month) DO UPDATE
		 SET expected_amount = EXCLUDED.expected_amount,
		     actual_amount = EXCLUDED.actual_amount,
		     status = EXCLUDED.status,
		     received_at = EXCLUDED.received_at,
		     updated_at = now()
		 RETURNING `+incomeInstanceColumns,
		inst.UserID, inst.IncomeID, inst.Month, expected, actual, string(inst.Status),
		nullableTimestamptz(inst.ReceivedAt))

	return scanIncomeInstance(row)
}

func scanIncomeInstance(row pgx.Row) (*domain.MonthlyIncomeInstance, error) {
	var inst domain.MonthlyIncomeInstance
	var expected, actual pgtype.Numeric
	var receivedAt pgtype.Timestamptz
	var status string

	err := row.Scan(&inst.ID, &inst.UserID, &inst.IncomeID, &inst.Month, &expected, &actual,
		&status, &receivedAt, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		return nil, err
	}

	inst.ExpectedAmount = pgNumericToDecimal(expected)
	inst.ActualAmount = pgNumericToNullableDecimal(actual)
	inst.Status = domain.IncomeStatus(status)
	inst.ReceivedAt = pgTimestamptzToNullable(receivedAt)
	return &inst, nil
}
