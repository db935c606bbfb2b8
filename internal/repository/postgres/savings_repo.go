package postgres

import (
	"context"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const savingsContributionColumns = `id, user_id, pot_id, amount, note, transfer_id, created_at`

// SavingsRepository implements domain.SavingsRepository using
// PostgreSQL. Every write moves the pot's denormalized saved_amount in
// the same transaction as the ledger insert.
type SavingsRepository struct {
	pool *pgxpool.Pool
}

// NewSavingsRepository creates a new SavingsRepository
func NewSavingsRepository(pool *pgxpool.Pool) *SavingsRepository {
	return &SavingsRepository{pool: pool}
}

// CreateContribution appends the entry and moves the pot's savedAmount
// by the same signed amount, atomically
func (r *SavingsRepository) CreateContribution(ctx context.Context, c *domain.SavingsContribution) (*domain.SavingsContribution, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := insertContribution(ctx, tx, c)
	if err != nil {
		return nil, err
	}
	if err := movePotBalance(ctx, tx, c.UserID, c.PotID, c.Amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTransferPair appends the debit and credit entries and moves
// both pot balances in one transaction; a failure creates neither. The
// debit update is guarded against overdraw inside the transaction, so a
// concurrent transfer that passed the caller's check still aborts both
// legs instead of taking the source pot negative.
func (r *SavingsRepository) CreateTransferPair(ctx context.Context, debit, credit *domain.SavingsContribution) (*domain.SavingsContribution, *domain.SavingsContribution, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	d, err := insertContribution(ctx, tx, debit)
	if err != nil {
		return nil, nil, err
	}
	c, err := insertContribution(ctx, tx, credit)
	if err != nil {
		return nil, nil, err
	}
	if err := debitPotBalance(ctx, tx, debit.UserID, debit.PotID, debit.Amount); err != nil {
		return nil, nil, err
	}
	if err := movePotBalance(ctx, tx, credit.UserID, credit.PotID, credit.Amount); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return d, c, nil
}

// ListByPot returns the pot's contributions, newest first
func (r *SavingsRepository) ListByPot(ctx context.Context, userID uuid.UUID, potID int32) ([]*domain.SavingsContribution, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+savingsContributionColumns+` FROM savings_contributions
		 WHERE user_id = $1 AND pot_id = $2
		 ORDER BY created_at DESC, id DESC`,
		userID, potID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.SavingsContribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// SumByPot returns the replay balance of the pot
func (r *SavingsRepository) SumByPot(ctx context.Context, userID uuid.UUID, potID int32) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM savings_contributions
		 WHERE user_id = $1 AND pot_id = $2`,
		userID, potID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// SetPotBalance overwrites the denormalized savedAmount
func (r *SavingsRepository) SetPotBalance(ctx context.Context, userID uuid.UUID, potID int32, balance decimal.Decimal) error {
	num, err := decimalToPgNumeric(balance)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE expense_templates SET saved_amount = $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, potID, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPotNotFound
	}
	return nil
}

func insertContribution(ctx context.Context, tx pgx.Tx, c *domain.SavingsContribution) (*domain.SavingsContribution, error) {
	amount, err := decimalToPgNumeric(c.Amount)
	if err != nil {
		return nil, err
	}

	var transferID pgtype.UUID
	if c.TransferID != nil {
		transferID = pgtype.UUID{Bytes: *c.TransferID, Valid: true}
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO savings_contributions (user_id, pot_id, amount, note, transfer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		 RETURNING `+savingsContributionColumns,
		c.UserID, c.PotID, amount, nullableText(c.Note), transferID,
		nullableTimestamptz(timePtrOrNil(c.CreatedAt)))

	return scanContribution(row)
}

func movePotBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, potID int32, delta decimal.Decimal) error {
	num, err := decimalToPgNumeric(delta)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE expense_templates SET saved_amount = saved_amount + $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, potID, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPotNotFound
	}
	return nil
}

// debitPotBalance moves the pot balance by a negative delta, refusing
// to take it below zero. Zero rows affected means the current balance
// no longer covers the debit.
func debitPotBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, potID int32, delta decimal.Decimal) error {
	num, err := decimalToPgNumeric(delta)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE expense_templates SET saved_amount = saved_amount + $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND saved_amount + $3 >= 0`,
		userID, potID, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func scanContribution(row pgx.Row) (*domain.SavingsContribution, error) {
	var c domain.SavingsContribution
	var note pgtype.Text
	var transferID pgtype.UUID
	var amount pgtype.Numeric

	err := row.Scan(&c.ID, &c.UserID, &c.PotID, &amount, &note, &transferID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.Amount = pgNumericToDecimal(amount)
	c.Note = pgTextToNullable(note)
	if transferID.Valid {
		id := uuid.UUID(transferID.Bytes)
		c.TransferID = &id
	}
	return &c, nil
}
