package http

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/documents"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
)

// HeaderIdempotencyKey identifica un guardado lógico; los reintentos con la
// misma clave no duplican el documento.
const HeaderIdempotencyKey = "Idempotency-Key"

var validate = validator.New()

// DocumentHandler expone el motor genérico de documentos; un juego de rutas por tipo.
type DocumentHandler struct {
	svc *documents.Service
	pdf *documents.PDFUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(svc *documents.Service, pdf *documents.PDFUseCase) *DocumentHandler {
	return &DocumentHandler{svc: svc, pdf: pdf}
}

// Register registra las rutas del tipo bajo /api/{recurso}. Las acciones que el
// tipo no soporta responden 405 con la regla NO_SOPORTADO.
func (h *DocumentHandler) Register(r fiber.Router, cfg *document.KindConfig) {
	g := r.Group("/" + cfg.Resource)
	g.Get("/", h.List(cfg))
	g.Post("/validar", h.Preview(cfg))
	g.Post("/", h.Create(cfg))
	g.Get("/:id", h.GetByID(cfg))
	g.Put("/:id", h.Update(cfg))
	g.Patch("/:id/anular", h.Deactivate(cfg))
	g.Patch("/:id/activar", h.Reactivate(cfg))
	g.Patch("/:id/estado", h.ChangeStatus(cfg))
	g.Patch("/:id/pago", h.SetPaid(cfg))
	g.Post("/:id/producir", h.Produce(cfg))
	g.Delete("/:id", h.Delete(cfg))
	g.Get("/:id/pdf", h.PDF(cfg))
}

// List GET /api/{recurso}?activos=true&limit=&offset=
func (h *DocumentHandler) List(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.DocumentListRequest
		if err := c.QueryParser(&in); err != nil {
			return badRequest(c, "parámetros de consulta inválidos")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, "limit u offset fuera de rango")
		}
		out, err := h.svc.List(c.UserContext(), cfg, in)
		if err != nil {
			return respondError(c, cfg, "", err)
		}
		return c.JSON(out)
	}
}

// GetByID GET /api/{recurso}/:id
func (h *DocumentHandler) GetByID(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		out, err := h.svc.Get(c.UserContext(), cfg, id)
		if err != nil {
			return respondError(c, cfg, "", err)
		}
		return c.JSON(out)
	}
}

// Preview valida un borrador sin guardarlo.
// POST /api/{recurso}/validar
func (h *DocumentHandler) Preview(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := parseForm(c)
		if err != nil {
			return badRequest(c, "cuerpo inválido")
		}
		out, err := h.svc.Preview(c.UserContext(), cfg, form)
		if err != nil {
			return respondError(c, cfg, document.ActionCreate, err)
		}
		return c.JSON(out)
	}
}

// Create POST /api/{recurso}
func (h *DocumentHandler) Create(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := parseForm(c)
		if err != nil {
			return badRequest(c, "cuerpo inválido")
		}
		out, err := h.svc.Create(c.UserContext(), cfg, form, c.Get(HeaderIdempotencyKey))
		if err != nil {
			return respondError(c, cfg, document.ActionCreate, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// Update PUT /api/{recurso}/:id
func (h *DocumentHandler) Update(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		form, err := parseForm(c)
		if err != nil {
			return badRequest(c, "cuerpo inválido")
		}
		out, err := h.svc.Update(c.UserContext(), cfg, id, form)
		if err != nil {
			return respondError(c, cfg, document.ActionUpdate, err)
		}
		return c.JSON(out)
	}
}

// Deactivate PATCH /api/{recurso}/:id/anular {motivo}
func (h *DocumentHandler) Deactivate(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		var in dto.CancelRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "cuerpo inválido")
		}
		out, err := h.svc.Deactivate(c.UserContext(), cfg, id, in.Reason)
		if err != nil {
			return respondError(c, cfg, document.ActionDeactivate, err)
		}
		return c.JSON(out)
	}
}

// Reactivate PATCH /api/{recurso}/:id/activar
func (h *DocumentHandler) Reactivate(cfg *document.KindConfig) fiber.Handler {
	return h.byID(cfg, document.ActionReactivate, h.svc.Reactivate)
}

// Produce POST /api/{recurso}/:id/producir
func (h *DocumentHandler) Produce(cfg *document.KindConfig) fiber.Handler {
	return h.byID(cfg, document.ActionProduce, h.svc.Produce)
}

// Delete DELETE /api/{recurso}/:id
func (h *DocumentHandler) Delete(cfg *document.KindConfig) fiber.Handler {
	return h.byID(cfg, document.ActionDelete, h.svc.Delete)
}

// ChangeStatus PATCH /api/{recurso}/:id/estado {estado}
func (h *DocumentHandler) ChangeStatus(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		var in dto.StatusRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "cuerpo inválido")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, "estado es requerido")
		}
		out, err := h.svc.ChangeStatus(c.UserContext(), cfg, id, in.Status)
		if err != nil {
			return respondError(c, cfg, document.ActionChangeStatus, err)
		}
		return c.JSON(out)
	}
}

// SetPaid PATCH /api/{recurso}/:id/pago {pagado, fecha_pago}
func (h *DocumentHandler) SetPaid(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		var in dto.PaymentRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "cuerpo inválido")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, "pagado es requerido y fecha_pago debe ser AAAA-MM-DD")
		}
		out, err := h.svc.SetPaid(c.UserContext(), cfg, id, *in.Paid, in.PaymentDate)
		if err != nil {
			return respondError(c, cfg, document.ActionSetPaid, err)
		}
		return c.JSON(out)
	}
}

// PDF descarga el comprobante.
// GET /api/{recurso}/:id/pdf
func (h *DocumentHandler) PDF(cfg *document.KindConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		pdfBytes, filename, err := h.pdf.Download(c.UserContext(), cfg, id)
		if err != nil {
			return respondError(c, cfg, "", err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(pdfBytes)
	}
}

type idAction func(ctx context.Context, cfg *document.KindConfig, id int) (*dto.DocumentResult, error)

func (h *DocumentHandler) byID(cfg *document.KindConfig, action document.Action, fn idAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, "id inválido")
		}
		out, err := fn(c.UserContext(), cfg, id)
		if err != nil {
			return respondError(c, cfg, action, err)
		}
		return c.JSON(out)
	}
}

func pathID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}

// parseForm lee el cuerpo JSON como registro crudo. Los números llegan como
// json.Number para no perder precisión en los precios.
func parseForm(c *fiber.Ctx) (document.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	form := document.Record{}
	if err := dec.Decode(&form); err != nil {
		return nil, err
	}
	return form, nil
}
