package domain

import "errors"

// Domain errors. Handlers map these onto the HTTP error taxonomy:
// validation errors are the caller's fault, not-found errors target a
// missing or foreign resource, and ErrBalanceMismatch signals a broken
// invariant rather than bad input.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")

	ErrUserNotFound    = errors.New("user not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrCardNotFound    = errors.New("card not found")

	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds maximum length")

	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidAnchorDay = errors.New("anchor day must be between 1 and 31")
	ErrInvalidMonth     = errors.New("invalid month key")

	ErrExpenseTemplateNotFound = errors.New("expense template not found")
	ErrRecurrenceRequired      = errors.New("recurring expense requires a recurrence rule")
	ErrDueDateRequired         = errors.New("one-time expense requires a due date")
	ErrTargetAmountRequired    = errors.New("planned expense requires a target amount")

	ErrIncomeTemplateNotFound = errors.New("income template not found")
	ErrIncomeAmountRequired   = errors.New("fixed income requires an amount")
	ErrIncomeNotVariable      = errors.New("income is not variable")

	ErrDebtNotFound               = errors.New("debt not found")
	ErrDebtTransactionTypeInvalid = errors.New("debt transaction type must be payment or charge")

	ErrInstanceNotFound        = errors.New("monthly instance not found")
	ErrIncomeInstanceNotFound  = errors.New("monthly income instance not found")
	ErrInstanceAlreadyPaid     = errors.New("instance is already paid")
	ErrInstancePaid            = errors.New("paid instance must be reverted before this transition")
	ErrIllegalStatusTransition = errors.New("illegal status transition")

	ErrPotNotFound       = errors.New("savings pot not found")
	ErrPotNotSavings     = errors.New("expense is not a savings pot")
	ErrInsufficientFunds = errors.New("transfer amount exceeds pot balance")
	ErrSamePot           = errors.New("source and destination pots must differ")

	// ErrBalanceMismatch indicates a stored balance diverged from its
	// ledger replay. It is a bug signal, never a user error.
	ErrBalanceMismatch = errors.New("stored balance diverges from ledger replay")
)

// Validation constants
const (
	MaxNameLength = 200
)
