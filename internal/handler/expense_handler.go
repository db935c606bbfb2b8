package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense template and instance HTTP requests
type ExpenseHandler struct {
	templateService *service.ExpenseTemplateService
	ledgerService   *service.LedgerService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(templateService *service.ExpenseTemplateService, ledgerService *service.LedgerService) *ExpenseHandler {
	return &ExpenseHandler{
		templateService: templateService,
		ledgerService:   ledgerService,
	}
}

// RecurrenceRequest represents a recurrence rule in request bodies
type RecurrenceRequest struct {
	Frequency string `json:"frequency" validate:"required"`
	AnchorDay int32  `json:"anchorDay" validate:"required,min=1,max=31"`
}

// ExpenseTemplateRequest represents the create/update template body
type ExpenseTemplateRequest struct {
	SectionID    *int32             `json:"sectionId,omitempty"`
	CardID       *int32             `json:"cardId,omitempty"`
	Name         string             `json:"name" validate:"required"`
	Amount       string             `json:"amount,omitempty"`
	Type         string             `json:"type,omitempty"`
	Recurrence   *RecurrenceRequest `json:"recurrence,omitempty"`
	AutoDebit    bool               `json:"autoDebit"`
	DueDate      *string            `json:"dueDate,omitempty"`
	TargetAmount *string            `json:"targetAmount,omitempty"`
	TargetDate   *string            `json:"targetDate,omitempty"`
	IsActive     *bool              `json:"isActive,omitempty"`
}

func parseID(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return int32(id), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseOptionalAmount(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ExpenseTemplateRequest) recurrence() *domain.RecurrenceRule {
	if r.Recurrence == nil {
		return nil
	}
	return &domain.RecurrenceRule{
		Frequency: domain.Frequency(r.Recurrence.Frequency),
		AnchorDay: r.Recurrence.AnchorDay,
	}
}

// CreateTemplate handles POST /api/v1/expenses
func (h *ExpenseHandler) CreateTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ExpenseTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	targetAmount, err := parseOptionalAmount(req.TargetAmount)
	if err != nil {
		return NewValidationError(c, "Invalid target amount", []ValidationError{
			{Field: "targetAmount", Message: "Must be a valid decimal number"},
		})
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return NewValidationError(c, "Invalid due date", []ValidationError{
			{Field: "dueDate", Message: "Must be formatted YYYY-MM-DD"},
		})
	}
	targetDate, err := parseOptionalDate(req.TargetDate)
	if err != nil {
		return NewValidationError(c, "Invalid target date", []ValidationError{
			{Field: "targetDate", Message: "Must be formatted YYYY-MM-DD"},
		})
	}

	template, err := h.templateService.CreateTemplate(c.Request().Context(), userID, service.CreateExpenseTemplateInput{
		SectionID:    req.SectionID,
		CardID:       req.CardID,
		Name:         req.Name,
		Amount:       amount,
		Type:         domain.ExpenseType(req.Type),
		Recurrence:   req.recurrence(),
		AutoDebit:    req.AutoDebit,
		DueDate:      dueDate,
		TargetAmount: targetAmount,
		TargetDate:   targetDate,
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, template)
}

// GetTemplates handles GET /api/v1/expenses
func (h *ExpenseHandler) GetTemplates(c echo.Context) error {
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

// GetTemplate handles GET /api/v1/expenses/:id
func (h *ExpenseHandler) GetTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id", nil)
	}

	template, err := h.templateService.GetTemplate(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// UpdateTemplate handles PUT /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id", nil)
	}

	var req ExpenseTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", nil)
	}
	targetAmount, err := parseOptionalAmount(req.TargetAmount)
	if err != nil {
		return NewValidationError(c, "Invalid target amount", nil)
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return NewValidationError(c, "Invalid due date", nil)
	}
	targetDate, err := parseOptionalDate(req.TargetDate)
	if err != nil {
		return NewValidationError(c, "Invalid target date", nil)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	template, err := h.templateService.UpdateTemplate(c.Request().Context(), userID, id, service.UpdateExpenseTemplateInput{
		SectionID:    req.SectionID,
		CardID:       req.CardID,
		Name:         req.Name,
		Amount:       amount,
		Recurrence:   req.recurrence(),
		AutoDebit:    req.AutoDebit,
		DueDate:      dueDate,
		TargetAmount: targetAmount,
		TargetDate:   targetDate,
		IsActive:     isActive,
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteTemplate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id", nil)
	}

	if err := h.templateService.DeactivateTemplate(c.Request().Context(), userID, id); err != nil {
		return DomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// PayInstanceRequest represents the mark-paid body
type PayInstanceRequest struct {
	PaidAt *string `json:"paidAt,omitempty"`
}

// PayInstance handles POST /api/v1/instances/:id/pay
func (h *ExpenseHandler) PayInstance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid instance id", nil)
	}

	var req PayInstanceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	paidAt := time.Now()
	if parsed, err := parseOptionalDate(req.PaidAt); err != nil {
		return NewValidationError(c, "Invalid paid date", []ValidationError{
			{Field: "paidAt", Message: "Must be formatted YYYY-MM-DD"},
		})
	} else if parsed != nil {
		paidAt = *parsed
	}

	inst, err := h.ledgerService.MarkPaid(c.Request().Context(), userID, id, paidAt)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, inst)
}

// DeferInstance handles POST /api/v1/instances/:id/defer
func (h *ExpenseHandler) DeferInstance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid instance id", nil)
	}

	inst, err := h.ledgerService.MarkDeferred(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, inst)
}

// RevertInstance handles POST /api/v1/instances/:id/revert
func (h *ExpenseHandler) RevertInstance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid instance id", nil)
	}

	inst, err := h.ledgerService.RevertToUpcoming(c.Request().Context(), userID, id)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, inst)
}

// AdhocExpenseRequest represents the ad-hoc expense body
type AdhocExpenseRequest struct {
	SectionID *int32 `json:"sectionId,omitempty"`
	CardID    *int32 `json:"cardId,omitempty"`
	Name      string `json:"name" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	DueDate   string `json:"dueDate" validate:"required"`
	Paid      bool   `json:"paid"`
}

// CreateAdhocExpense handles POST /api/v1/months/:month/expenses
func (h *ExpenseHandler) CreateAdhocExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := util.ParseMonth(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be formatted YYYY-MM"},
		})
	}

	var req AdhocExpenseRequest
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
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return NewValidationError(c, "Invalid due date", []ValidationError{
			{Field: "dueDate", Message: "Must be formatted YYYY-MM-DD"},
		})
	}

	inst, err := h.ledgerService.CreateAdhocExpense(c.Request().Context(), userID, month, service.CreateAdhocExpenseInput{
		SectionID: req.SectionID,
		CardID:    req.CardID,
		Name:      req.Name,
		Amount:    amount,
		DueDate:   dueDate,
		Paid:      req.Paid,
	})
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, inst)
}
