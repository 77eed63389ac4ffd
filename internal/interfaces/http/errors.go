package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
)

// Códigos de error de la API.
const (
	CodeValidation  = "VALIDATION"
	CodePersistence = "PERSISTENCE"
	CodeNotFound    = "NOT_FOUND"
	CodeInvalidBody = "INVALID_BODY"
	CodeInternal    = "INTERNAL"
)

// respondError traduce el error de una operación sobre documentos a HTTP,
// siempre con la notificación para el usuario.
//
//	ValidationError  -> 422 VALIDATION + errores por campo
//	PolicyError      -> 404 (NO_ENCONTRADO) o 409 con el código de la regla
//	PersistenceError -> 502 PERSISTENCE
func respondError(c *fiber.Ctx, cfg *document.KindConfig, action document.Action, err error) error {
	n := document.Failed(cfg, action, err)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
			Code: CodeValidation, Message: n.Text, Errors: verr.Fields, Notification: n,
		})
	}
	var perr *domain.PolicyError
	if errors.As(err, &perr) {
		status := fiber.StatusConflict
		switch perr.Rule {
		case domain.RuleNotFound:
			status = fiber.StatusNotFound
		case domain.RuleUnsupported, domain.RulePaymentTracking:
			status = fiber.StatusMethodNotAllowed
		}
		return c.Status(status).JSON(dto.PolicyErrorResponse{Code: perr.Rule, Message: perr.Message, Notification: n})
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.PolicyErrorResponse{Code: CodePersistence, Message: n.Text, Notification: n})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.PolicyErrorResponse{Code: CodeNotFound, Message: n.Text, Notification: n})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.PolicyErrorResponse{Code: CodeInternal, Message: n.Text, Notification: n})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: message})
}
