package service

import (
	"context"
	"strings"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseTemplateService handles expense template business logic
type ExpenseTemplateService struct {
	templateRepo domain.ExpenseTemplateRepository
}

// NewExpenseTemplateService creates a new ExpenseTemplateService
func NewExpenseTemplateService(templateRepo domain.ExpenseTemplateRepository) *ExpenseTemplateService {
	return &ExpenseTemplateService{templateRepo: templateRepo}
}

// CreateExpenseTemplateInput holds the input for creating an expense template
type CreateExpenseTemplateInput struct {
	SectionID    *int32
	CardID       *int32
	Name         string
	Amount       decimal.Decimal
	Type         domain.ExpenseType
	Recurrence   *domain.RecurrenceRule
	AutoDebit    bool
	DueDate      *time.Time
	TargetAmount *decimal.Decimal
	TargetDate   *time.Time
}

// CreateTemplate creates a new expense template
func (s *ExpenseTemplateService) CreateTemplate(ctx context.Context, userID uuid.UUID, input CreateExpenseTemplateInput) (*domain.ExpenseTemplate, error) {
	template := &domain.ExpenseTemplate{
		UserID:       userID,
		SectionID:    input.SectionID,
		CardID:       input.CardID,
		Name:         strings.TrimSpace(input.Name),
		Amount:       input.Amount,
		Type:         input.Type,
		Recurrence:   input.Recurrence,
		AutoDebit:    input.AutoDebit,
		DueDate:      input.DueDate,
		TargetAmount: input.TargetAmount,
		TargetDate:   input.TargetDate,
		SavedAmount:  decimal.Zero,
		IsActive:     true,
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}
	return s.templateRepo.Create(ctx, template)
}

// GetTemplate retrieves an expense template by ID
func (s *ExpenseTemplateService) GetTemplate(ctx context.Context, userID uuid.UUID, id int32) (*domain.ExpenseTemplate, error) {
	return s.templateRepo.GetByID(ctx, userID, id)
}

// GetTemplates retrieves the user's expense templates
func (s *ExpenseTemplateService) GetTemplates(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.ExpenseTemplate, error) {
	return s.templateRepo.ListByUser(ctx, userID, activeOnly)
}

// UpdateExpenseTemplateInput holds the input for updating an expense template
type UpdateExpenseTemplateInput struct {
	SectionID    *int32
	CardID       *int32
	Name         string
	Amount       decimal.Decimal
	Recurrence   *domain.RecurrenceRule
	AutoDebit    bool
	DueDate      *time.Time
	TargetAmount *decimal.Decimal
	TargetDate   *time.Time
	IsActive     bool
}

// UpdateTemplate updates an expense template. The type is immutable;
// instances already generated keep their captured values.
func (s *ExpenseTemplateService) UpdateTemplate(ctx context.Context, userID uuid.UUID, id int32, input UpdateExpenseTemplateInput) (*domain.ExpenseTemplate, error) {
	existing, err := s.templateRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	existing.SectionID = input.SectionID
	existing.CardID = input.CardID
	existing.Name = strings.TrimSpace(input.Name)
	existing.Amount = input.Amount
	existing.Recurrence = input.Recurrence
	existing.AutoDebit = input.AutoDebit
	existing.DueDate = input.DueDate
	existing.TargetAmount = input.TargetAmount
	existing.TargetDate = input.TargetDate
	existing.IsActive = input.IsActive

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	return s.templateRepo.Update(ctx, existing)
}

// DeactivateTemplate soft-deletes an expense template. Existing monthly
// instances keep referencing it; only future generation stops.
func (s *ExpenseTemplateService) DeactivateTemplate(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.templateRepo.Deactivate(ctx, userID, id)
}
