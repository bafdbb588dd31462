package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/domain"
)

// localError guarda el error original para el log de la petición.
const localError = "error"

// errorMapping estado HTTP y código estable por sentinela de dominio. El orden importa:
// se usa la primera coincidencia de errors.Is.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInsufficientFunds, fiber.StatusConflict, "INSUFFICIENT_FUNDS"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONCURRENT_MODIFICATION"},
	{domain.ErrDuplicateInvitation, fiber.StatusConflict, "DUPLICATE_INVITATION"},
	{domain.ErrAlreadyUsed, fiber.StatusConflict, "INVITATION_ALREADY_USED"},
	{domain.ErrExpired, fiber.StatusGone, "INVITATION_EXPIRED"},
	{domain.ErrConstraintViolation, fiber.StatusConflict, "CONSTRAINT_VIOLATION"},
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
}

// respondError traduce un error de aplicación a dto.ErrorResponse.
// Los errores no clasificados responden 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, err error) error {
	c.Locals(localError, err)
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
