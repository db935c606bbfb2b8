package handler

import (
	"net/http"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// IncomeHandler handles income template and instance HTTP requests
type IncomeHandler struct {
	templateService *service.IncomeTemplateService
	ledgerService   *service.LedgerService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(templateService *service.IncomeTemplateService, ledgerService *service.LedgerService) *IncomeHandler {
	return &IncomeHandler{
		templateService: templateService,
		ledgerService:   ledgerService,
	}
}

// IncomeTemplateRequest represents the create/update income body
type IncomeTemplateRequest struct {
	Name            string  `json:"name" validate:"required"`
	Source          string  `json:"source,omitempty"`
	Amount          *string `json:"amount,omitempty"`
	EstimatedAmount *string `json:"estimatedAmount,omitempty"`
	Frequency       string  `json:"frequency" validate:"required"`
	IsActive        *bool   `json:"isActive,omitempty"`
}

// CreateTemplate handles POST /api/v1/incomes
func (h *IncomeHandler) CreateTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req IncomeTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	estimated, err := parseOptionalAmount(req.EstimatedAmount)
	if err != nil {
		return NewValidationError(c, "Invalid estimated amount", []ValidationError{
			{Field: "estimatedAmount", Message: "Must be a valid decimal number"},
		})
	}

	template, err := h.templateService.CreateTemplate(c.Request().Context(), userID, service.CreateIncomeTemplateInput{
		Name:            req.Name,
		Source:          req.Source,
		Amount:          amount,
		EstimatedAmount: estimated,
		Frequency:       domain.IncomeFrequency(req.Frequency),
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, template)
}

// GetTemplates handles GET /api/v1/incomes
func (h *IncomeHandler) GetTemplates(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	activeOnly := c.QueryParam("all") != "true"
	templates, err := h.templateService.GetTemplates(c.Request().Context(), userID, activeOnly)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, templates)
}

// UpdateTemplate handles PUT /api/v1/incomes/:id
func (h *IncomeHandler) UpdateTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid income id", nil)
	}

	var req IncomeTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", nil)
	}
	estimated, err := parseOptionalAmount(req.EstimatedAmount)
	if err != nil {
		return NewValidationError(c, "Invalid estimated amount", nil)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	template, err := h.templateService.UpdateTemplate(c.Request().Context(), userID, id, service.UpdateIncomeTemplateInput{
		Name:            req.Name,
		Source:          req.Source,
		Amount:          amount,
		EstimatedAmount: estimated,
		Frequency:       domain.IncomeFrequency(req.Frequency),
		IsActive:        isActive,
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /api/v1/incomes/:id
func (h *IncomeHandler) DeleteTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid income id", nil)
	}

	if err := h.templateService.DeactivateTemplate(c.Request().Context(), userID, id); err != nil {
		return DomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ReceiveIncomeRequest represents the income receipt body
type ReceiveIncomeRequest struct {
	Amount     string  `json:"amount" validate:"required"`
	ReceivedAt *string `json:"receivedAt,omitempty"`
}

// ReceiveInstance handles POST /api/v1/income-instances/:id/receive
func (h *IncomeHandler) ReceiveInstance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid instance id", nil)
	}

	var req ReceiveIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	receivedAt := time.Now()
	if parsed, err := parseOptionalDate(req.ReceivedAt); err != nil {
		return NewValidationError(c, "Invalid received date", nil)
	} else if parsed != nil {
		receivedAt = *parsed
	}

	inst, err := h.ledgerService.MarkIncomeReceived(c.Request().Context(), userID, id, amount, receivedAt)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, inst)
}

// ReceiveVariable handles POST /api/v1/incomes/:id/months/:month/receive
func (h *IncomeHandler) ReceiveVariable(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid income id", nil)
	}
	month, err := util.ParseMonth(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be formatted YYYY-MM"},
		})
	}

	var req ReceiveIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	receivedAt := time.Now()
	if parsed, err := parseOptionalDate(req.ReceivedAt); err != nil {
		return NewValidationError(c, "Invalid received date", nil)
	} else if parsed != nil {
		receivedAt = *parsed
	}

	inst, err := h.ledgerService.MarkVariableIncomeReceived(c.Request().Context(), userID, id, month, amount, receivedAt)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, inst)
}
