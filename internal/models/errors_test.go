package models

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewNotFoundError("Barrel", 1), fiber.StatusNotFound},
		{NewTargetNotFoundError(7), fiber.StatusNotFound},
		{NewWrongCategoryError(BarrelTypeFriendFez), fiber.StatusBadRequest},
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewAlreadyMemberError(7), fiber.StatusBadRequest},
		{NewNotMemberError(7), fiber.StatusBadRequest},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{NewUnauthorizedError("who"), fiber.StatusUnauthorized},
		{NewConflictError("Barrel", 1), fiber.StatusConflict},
		{NewInvariantViolationError("broken"), fiber.StatusInternalServerError},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewInternalError(inner)

	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "boom")
}
