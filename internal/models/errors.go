package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// NewWrongCategoryError reports an operation applied to a barrel of the wrong type.
func NewWrongCategoryError(expected BarrelType) *AppError {
	return &AppError{
		Code:    "WRONG_CATEGORY",
		Message: fmt.Sprintf("Operation requires a %s barrel", expected),
	}
}

// NewInvariantViolationError reports a broken storage invariant, such as a
// missing or malformed required attribute. Surfaced as a 500: it signals a
// bug, not a user mistake.
func NewInvariantViolationError(message string) *AppError {
	return &AppError{
		Code:    "INVARIANT_VIOLATION",
		Message: message,
	}
}

func NewAlreadyMemberError(userID uint) *AppError {
	return &AppError{
		Code:    "ALREADY_MEMBER",
		Message: fmt.Sprintf("User %d is already a member", userID),
	}
}

func NewNotMemberError(userID uint) *AppError {
	return &AppError{
		Code:    "NOT_MEMBER",
		Message: fmt.Sprintf("User %d is not a member", userID),
	}
}

func NewTargetNotFoundError(userID uint) *AppError {
	return &AppError{
		Code:    "TARGET_NOT_FOUND",
		Message: fmt.Sprintf("Target user %d does not exist", userID),
	}
}

// NewConflictError reports a stale optimistic-concurrency write.
func NewConflictError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: fmt.Sprintf("%s with ID %v was modified concurrently; reload and retry", resource, id),
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// HTTPStatus maps the error code to the HTTP status the API contract promises.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case "NOT_FOUND", "TARGET_NOT_FOUND":
		return fiber.StatusNotFound
	case "WRONG_CATEGORY", "VALIDATION_ERROR", "ALREADY_MEMBER", "NOT_MEMBER":
		return fiber.StatusBadRequest
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "CONFLICT":
		return fiber.StatusConflict
	default:
		// INVARIANT_VIOLATION and INTERNAL_ERROR are bug signals.
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes an error response using the status implied by the
// error's code. Non-AppError values are treated as internal errors.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*AppError); ok {
		return RespondWithError(c, appErr.HTTPStatus(), appErr)
	}
	return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(err))
}
