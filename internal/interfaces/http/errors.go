package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/logistica-api/internal/application/dto"
	"github.com/jhoicas/logistica-api/internal/domain"
)

// writeError traduce un error de dominio a su código HTTP y cuerpo de error.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()},
			Product:       stockErr.Product,
			Requested:     stockErr.Requested,
			Available:     stockErr.Available,
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code = fiber.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrProductNotFound):
		status, code = fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrTradeNotFound):
		status, code = fiber.StatusNotFound, "TRADE_NOT_FOUND"
	case errors.Is(err, domain.ErrPartyNotFound):
		status, code = fiber.StatusNotFound, "PARTY_NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateProduct):
		status, code = fiber.StatusConflict, "PRODUCT_EXISTS"
	case errors.Is(err, domain.ErrDuplicateParty):
		status, code = fiber.StatusConflict, "PARTY_EXISTS"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
