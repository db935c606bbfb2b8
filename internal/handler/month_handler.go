package handler

import (
	"net/http"
	"time"

	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/foyerapp/foyer-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MonthHandler handles month page HTTP requests
type MonthHandler struct {
	monthService *service.MonthService
}

// NewMonthHandler creates a new MonthHandler
func NewMonthHandler(monthService *service.MonthService) *MonthHandler {
	return &MonthHandler{monthService: monthService}
}

// GetMonth handles GET /api/v1/months/:month
func (h *MonthHandler) GetMonth(c echo.Context) error {
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

	view, err := h.monthService.GetMonth(c.Request().Context(), userID, month, time.Now())
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}
