package handler

import (
	"errors"
	"net/http"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// foreign_key_violation: the request referenced a row that does not
// exist (e.g. a section or card id), which is the caller's input being
// wrong, not a server fault.
const pgForeignKeyViolation = "23503"

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://foyer.app/errors/validation"
	ErrorTypeNotFound     = "https://foyer.app/errors/not-found"
	ErrorTypeUnauthorized = "https://foyer.app/errors/unauthorized"
	ErrorTypeConflict     = "https://foyer.app/errors/conflict"
	ErrorTypeInternal     = "https://foyer.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal server error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrUserNotFound,
	domain.ErrSectionNotFound,
	domain.ErrCardNotFound,
	domain.ErrExpenseTemplateNotFound,
	domain.ErrIncomeTemplateNotFound,
	domain.ErrDebtNotFound,
	domain.ErrInstanceNotFound,
	domain.ErrIncomeInstanceNotFound,
	domain.ErrPotNotFound,
}

var validationErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrNameRequired,
	domain.ErrNameTooLong,
	domain.ErrInvalidAmount,
	domain.ErrInvalidFrequency,
	domain.ErrInvalidAnchorDay,
	domain.ErrInvalidMonth,
	domain.ErrRecurrenceRequired,
	domain.ErrDueDateRequired,
	domain.ErrTargetAmountRequired,
	domain.ErrIncomeAmountRequired,
	domain.ErrIncomeNotVariable,
	domain.ErrDebtTransactionTypeInvalid,
	domain.ErrPotNotSavings,
	domain.ErrInsufficientFunds,
	domain.ErrSamePot,
}

var conflictErrors = []error{
	domain.ErrInstanceAlreadyPaid,
	domain.ErrInstancePaid,
	domain.ErrIllegalStatusTransition,
}

// DomainError maps a domain sentinel error onto the HTTP error
// taxonomy. Unrecognized errors are logged and reported as internal.
func DomainError(c echo.Context, err error) error {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return NewNotFoundError(c, err.Error())
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return NewValidationError(c, err.Error(), nil)
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return NewConflictError(c, err.Error())
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return NewValidationError(c, "Referenced resource does not exist", nil)
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled error")
	return NewInternalError(c, "An unexpected error occurred")
}
