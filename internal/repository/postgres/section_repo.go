package postgres

import (
	"context"
	"errors"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SectionRepository implements domain.SectionRepository using PostgreSQL.
type SectionRepository struct {
	pool *pgxpool.Pool
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(pool *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{pool: pool}
}

// Create inserts a new section
func (r *SectionRepository) Create(ctx context.Context, s *domain.Section) (*domain.Section, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sections (user_id, name, sort_order)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, name, sort_order, created_at`,
		s.UserID, s.Name, s.SortOrder)

	return scanSection(row)
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Section, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, sort_order, created_at FROM sections
		 WHERE user_id = $1 AND id = $2`,
		userID, id)

	s, err := scanSection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSectionNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListByUser retrieves the user's sections in display order
func (r *SectionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Section, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, sort_order, created_at FROM sections
		 WHERE user_id = $1
		 ORDER BY sort_order, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func scanSection(row pgx.Row) (*domain.Section, error) {
	var s domain.Section
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.SortOrder, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// CardRepository implements domain.CardRepository using PostgreSQL.
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

// Create inserts a new card
func (r *CardRepository) Create(ctx context.Context, c *domain.Card) (*domain.Card, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO cards (user_id, name)
		 VALUES ($1, $2)
		 RETURNING id, user_id, name, created_at`,
		c.UserID, c.Name)

	return scanCard(row)
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Card, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM cards
		 WHERE user_id = $1 AND id = $2`,
		userID, id)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByUser retrieves the user's cards
func (r *CardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, created_at FROM cards
		 WHERE user_id = $1
		 ORDER BY name, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var c domain.Card
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
