package service

import (
	"context"
	"strings"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
)

// SectionService handles dashboard sections and payment cards
type SectionService struct {
	sectionRepo domain.SectionRepository
	cardRepo    domain.CardRepository
}

// NewSectionService creates a new SectionService
func NewSectionService(sectionRepo domain.SectionRepository, cardRepo domain.CardRepository) *SectionService {
	return &SectionService{sectionRepo: sectionRepo, cardRepo: cardRepo}
}

// CreateSection creates a new section
func (s *SectionService) CreateSection(ctx context.Context, userID uuid.UUID, name string, sortOrder int32) (*domain.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	return s.sectionRepo.Create(ctx, &domain.Section{
		UserID:    userID,
		Name:      name,
		SortOrder: sortOrder,
	})
}

// GetSections retrieves the user's sections
func (s *SectionService) GetSections(ctx context.Context, userID uuid.UUID) ([]*domain.Section, error) {
	return s.sectionRepo.ListByUser(ctx, userID)
}

// CreateCard creates a new payment card
func (s *SectionService) CreateCard(ctx context.Context, userID uuid.UUID, name string) (*domain.Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	return s.cardRepo.Create(ctx, &domain.Card{
		UserID: userID,
		Name:   name,
	})
}

// GetCards retrieves the user's cards
func (s *SectionService) GetCards(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	return s.cardRepo.ListByUser(ctx, userID)
}
