package handler

import (
	"net/http"

	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SectionHandler handles section and card HTTP requests
type SectionHandler struct {
	sectionService *service.SectionService
}

// NewSectionHandler creates a new SectionHandler
func NewSectionHandler(sectionService *service.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

// SectionRequest represents the create section body
type SectionRequest struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int32  `json:"sortOrder"`
}

// CreateSection handles POST /api/v1/sections
func (h *SectionHandler) CreateSection(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	section, err := h.sectionService.CreateSection(c.Request().Context(), userID, req.Name, req.SortOrder)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, section)
}

// GetSections handles GET /api/v1/sections
func (h *SectionHandler) GetSections(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	sections, err := h.sectionService.GetSections(c.Request().Context(), userID)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, sections)
}

// CardRequest represents the create card body
type CardRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateCard handles POST /api/v1/cards
func (h *SectionHandler) CreateCard(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	card, err := h.sectionService.CreateCard(c.Request().Context(), userID, req.Name)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusCreated, card)
}

// GetCards handles GET /api/v1/cards
func (h *SectionHandler) GetCards(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	cards, err := h.sectionService.GetCards(c.Request().Context(), userID)
	if err != nil {
		return DomainError(c, err)
	}

	return c.JSON(http.StatusOK, cards)
}
