package handler

import (
	"net/http"

	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SavingsHandler handles savings pot HTTP requests
type SavingsHandler struct {
	savingsService *service.SavingsService
}

// NewSavingsHandler creates a new SavingsHandler
func NewSavingsHandler(savingsService *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService}
}

// GetPots handles GET /api/v1/savings/pots
func (h *SavingsHandler) GetPots(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	pots, err := h.savingsService.GetPots(c.Request().Context(), userID)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, pots)
}

// GetFreePot handles GET /api/v1/savings/free-pot
func (h *SavingsHandler) GetFreePot(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	pot, err := h.savingsService.GetFreePot(c.Request().Context(), userID)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, pot)
}

// ContributionRequest represents the contribution body
type ContributionRequest struct {
	Amount string  `json:"amount" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

// Contribute handles POST /api/v1/savings/pots/:id/contributions
func (h *SavingsHandler) Contribute(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid pot id", nil)
	}

	var req ContributionRequest
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

	contribution, err := h.savingsService.Contribute(c.Request().Context(), userID, id, amount, req.Note)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, contribution)
}

// TransferRequest represents the pot transfer body
type TransferRequest struct {
	FromPotID int32   `json:"fromPotId" validate:"required"`
	ToPotID   int32   `json:"toPotId" validate:"required"`
	Amount    string  `json:"amount" validate:"required"`
	Note      *string `json:"note,omitempty"`
}

// Transfer handles POST /api/v1/savings/transfers
func (h *SavingsHandler) Transfer(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransferRequest
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

	result, err := h.savingsService.Transfer(c.Request().Context(), userID, req.FromPotID, req.ToPotID, amount, req.Note)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// GetHistory handles GET /api/v1/savings/pots/:id/contributions
func (h *SavingsHandler) GetHistory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid pot id", nil)
	}

	history, err := h.savingsService.GetHistory(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, history)
}

// ReconcilePot handles POST /api/v1/savings/pots/:id/reconcile
func (h *SavingsHandler) ReconcilePot(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid pot id", nil)
	}

	result, err := h.savingsService.Reconcile(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
