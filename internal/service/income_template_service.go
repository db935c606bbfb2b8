package service

import (
	"context"
	"strings"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeTemplateService handles income template business logic
type IncomeTemplateService struct {
	incomeRepo domain.IncomeTemplateRepository
}

// NewIncomeTemplateService creates a new IncomeTemplateService
func NewIncomeTemplateService(incomeRepo domain.IncomeTemplateRepository) *IncomeTemplateService {
	return &IncomeTemplateService{incomeRepo: incomeRepo}
}

// CreateIncomeTemplateInput holds the input for creating an income template
type CreateIncomeTemplateInput struct {
	Name            string
	Source          string
	Amount          *decimal.Decimal
	EstimatedAmount *decimal.Decimal
	Frequency       domain.IncomeFrequency
}

// CreateTemplate creates a new income template
func (s *IncomeTemplateService) CreateTemplate(ctx context.Context, userID uuid.UUID, input CreateIncomeTemplateInput) (*domain.IncomeTemplate, error) {
	template := &domain.IncomeTemplate{
		UserID:          userID,
		Name:            strings.TrimSpace(input.Name),
		Source:          strings.TrimSpace(input.Source),
		Amount:          input.Amount,
		EstimatedAmount: input.EstimatedAmount,
		Frequency:       input.Frequency,
		IsActive:        true,
	}
	if template.Source == "" {
		template.Source = template.Name
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}
	return s.incomeRepo.Create(ctx, template)
}

// GetTemplate retrieves an income template by ID
func (s *IncomeTemplateService) GetTemplate(ctx context.Context, userID uuid.UUID, id int32) (*domain.IncomeTemplate, error) {
	return s.incomeRepo.GetByID(ctx, userID, id)
}

// GetTemplates retrieves the user's income templates
func (s *IncomeTemplateService) GetTemplates(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.IncomeTemplate, error) {
	return s.incomeRepo.ListByUser(ctx, userID, activeOnly)
}

// UpdateIncomeTemplateInput holds the input for updating an income template
type UpdateIncomeTemplateInput struct {
	Name            string
	Source          string
	Amount          *decimal.Decimal
	EstimatedAmount *decimal.Decimal
	Frequency       domain.IncomeFrequency
	IsActive        bool
}

// UpdateTemplate updates an income template
func (s *IncomeTemplateService) UpdateTemplate(ctx context.Context, userID uuid.UUID, id int32, input UpdateIncomeTemplateInput) (*domain.IncomeTemplate, error) {
	existing, err := s.incomeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Source = strings.TrimSpace(input.Source)
	existing.Amount = input.Amount
	existing.EstimatedAmount = input.EstimatedAmount
	existing.Frequency = input.Frequency
	existing.IsActive = input.IsActive
	if existing.Source == "" {
		existing.Source = existing.Name
	}

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	return s.incomeRepo.Update(ctx, existing)
}

// DeactivateTemplate soft-deletes an income template
func (s *IncomeTemplateService) DeactivateTemplate(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.incomeRepo.Deactivate(ctx, userID, id)
}
