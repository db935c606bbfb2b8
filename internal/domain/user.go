package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the owner of every row in the system. Identity is resolved by
// the external auth layer; the engine only ever sees the resolved id.
type User struct {
	ID        uuid.UUID `json:"id"`
	Auth0ID   string    `json:"-"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// CreateOrGetByAuth0ID returns the user for the Auth0 subject,
	// creating the row on first sight.
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*User, error)
}
