package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Section groups expenses on the dashboard (Logement, Abonnements...).
type Section struct {
	ID        int32     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// Card is a payment card expenses can be tagged with.
type Card struct {
	ID        int32     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type SectionRepository interface {
	Create(ctx context.Context, s *Section) (*Section, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Section, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Section, error)
}

type CardRepository interface {
	Create(ctx context.Context, c *Card) (*Card, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Card, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Card, error)
}
