package handler

import (
	"net/http"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DebtHandler handles debt HTTP requests
type DebtHandler struct {
	debtService *service.DebtService
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService *service.DebtService) *DebtHandler {
	return &DebtHandler{debtService: debtService}
}

// DebtRequest represents the create/update debt body
type DebtRequest struct {
	Name             string            `json:"name" validate:"required"`
	OriginalAmount   string            `json:"originalAmount,omitempty"`
	RemainingBalance *string           `json:"remainingBalance,omitempty"`
	InterestRate     *string           `json:"interestRate,omitempty"`
	PaymentAmount    string            `json:"paymentAmount" validate:"required"`
	Recurrence       RecurrenceRequest `json:"recurrence" validate:"required"`
	NextDueDate      *string           `json:"nextDueDate,omitempty"`
	AutoDebit        bool              `json:"autoDebit"`
}

// CreateDebt handles POST /api/v1/debts
func (h *DebtHandler) CreateDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	original, err := parseAmount(req.OriginalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid original amount", []ValidationError{
			{Field: "originalAmount", Message: "Must be a valid decimal number"},
		})
	}
	remaining, err := parseOptionalAmount(req.RemainingBalance)
	if err != nil {
		return NewValidationError(c, "Invalid remaining balance", nil)
	}
	rate, err := parseOptionalAmount(req.InterestRate)
	if err != nil {
		return NewValidationError(c, "Invalid interest rate", nil)
	}
	payment, err := parseAmount(req.PaymentAmount)
	if err != nil {
		return NewValidationError(c, "Invalid payment amount", []ValidationError{
			{Field: "paymentAmount", Message: "Must be a valid decimal number"},
		})
	}
	nextDueDate, err := parseOptionalDate(req.NextDueDate)
	if err != nil {
		return NewValidationError(c, "Invalid next due date", nil)
	}

	debt, err := h.debtService.CreateDebt(c.Request().Context(), userID, service.CreateDebtInput{
		Name:             req.Name,
		OriginalAmount:   original,
		RemainingBalance: remaining,
		InterestRate:     rate,
		PaymentAmount:    payment,
		Recurrence: domain.RecurrenceRule{
			Frequency: domain.Frequency(req.Recurrence.Frequency),
			AnchorDay: req.Recurrence.AnchorDay,
		},
		NextDueDate: nextDueDate,
		AutoDebit:   req.AutoDebit,
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, debt)
}

// GetDebts handles GET /api/v1/debts
func (h *DebtHandler) GetDebts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	activeOnly := c.QueryParam("all") != "true"
	debts, err := h.debtService.GetDebts(c.Request().Context(), userID, activeOnly)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, debts)
}

// GetDebt handles GET /api/v1/debts/:id
func (h *DebtHandler) GetDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	debt, err := h.debtService.GetDebt(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, debt)
}

// UpdateDebt handles PUT /api/v1/debts/:id
func (h *DebtHandler) UpdateDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	rate, err := parseOptionalAmount(req.InterestRate)
	if err != nil {
		return NewValidationError(c, "Invalid interest rate", nil)
	}
	payment, err := parseAmount(req.PaymentAmount)
	if err != nil {
		return NewValidationError(c, "Invalid payment amount", nil)
	}
	nextDueDate, err := parseOptionalDate(req.NextDueDate)
	if err != nil {
		return NewValidationError(c, "Invalid next due date", nil)
	}

	debt, err := h.debtService.UpdateDebt(c.Request().Context(), userID, id, service.UpdateDebtInput{
		Name:          req.Name,
		InterestRate:  rate,
		PaymentAmount: payment,
		Recurrence: domain.RecurrenceRule{
			Frequency: domain.Frequency(req.Recurrence.Frequency),
			AnchorDay: req.Recurrence.AnchorDay,
		},
		NextDueDate: nextDueDate,
		AutoDebit:   req.AutoDebit,
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, debt)
}

// DeleteDebt handles DELETE /api/v1/debts/:id
func (h *DebtHandler) DeleteDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	if err := h.debtService.DeactivateDebt(c.Request().Context(), userID, id); err != nil {
		return DomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetTransactions handles GET /api/v1/debts/:id/transactions
func (h *DebtHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	txns, err := h.debtService.GetTransactions(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, txns)
}

// DebtTransactionRequest represents the post transaction body
type DebtTransactionRequest struct {
	Type   string `json:"type" validate:"required"`
	Amount string `json:"amount" validate:"required"`
	Month  string `json:"month" validate:"required"`
}

// PostTransaction handles POST /api/v1/debts/:id/transactions
func (h *DebtHandler) PostTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	var req DebtTransactionRequest
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
	month, err := util.ParseMonth(req.Month)
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be formatted YYYY-MM"},
		})
	}

	txnType := domain.DebtTransactionType(req.Type)
	source := domain.DebtSourceCharge
	if txnType == domain.DebtTransactionPayment {
		source = domain.DebtSourceExtraPayment
	}

	txn, err := h.debtService.PostTransaction(c.Request().Context(), userID, id, txnType, amount, month, source)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, txn)
}

// ExtraPaymentRequest represents the extra payment body
type ExtraPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	Month  string `json:"month" validate:"required"`
}

// MakeExtraPayment handles POST /api/v1/debts/:id/payments
func (h *DebtHandler) MakeExtraPayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	var req ExtraPaymentRequest
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
	month, err := util.ParseMonth(req.Month)
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be formatted YYYY-MM"},
		})
	}

	txn, err := h.debtService.MakeExtraPayment(c.Request().Context(), userID, id, amount, month)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, txn)
}

// ReconcileDebt handles POST /api/v1/debts/:id/reconcile
func (h *DebtHandler) ReconcileDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid debt id", nil)
	}

	result, err := h.debtService.Reconcile(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
