package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// CatalogHandler catálogos de solo lectura para los selectores de los formularios.
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// List godoc
// @Summary      Listar catálogo
// @Tags         catalogos
// @Security     Bearer
// @Produce      json
// @Param        catalogo  path   string  true   "proveedores | insumos | productos | clientes"
// @Param        activos   query  bool    false  "Solo entradas activas"
// @Success      200  {array}   dto.CatalogEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalogos/{catalogo} [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	var in dto.CatalogListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "parámetros de consulta inválidos")
	}
	out, err := h.uc.List(c.UserContext(), entity.Catalog(c.Params("catalogo")), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: "catálogo no encontrado"})
		}
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: CodePersistence, Message: pe.UserMessage("no se pudo cargar el catálogo")})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: CodeInternal, Message: err.Error()})
	}
	return c.JSON(out)
}
