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

// UserRepository implements domain.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, auth0_id, email, name, created_at, updated_at FROM users WHERE id = $1`,
		id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// CreateOrGetByAuth0ID returns the user for the Auth0 subject, creating
// the row on first sight. The upsert keeps email and name current.
func (r *UserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (auth0_id) DO UPDATE
		 SET email = EXCLUDED.email,
		     name = COALESCE(EXCLUDED.name, users.name),
		     updated_at = now()
		 RETURNING id, auth0_id, email, name, created_at, updated_at`,
		auth0ID, email, nullableText(name))

	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var name pgtype.Text
	if err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = pgTextToNullable(name)
	return &u, nil
}
