package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/internal/application/documents"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Documents   *documents.Service
	DocumentPDF *documents.PDFUseCase
	Catalogs    *catalog.UseCase
	JWTSecret   string
	JWTIssuer   string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Todas las rutas de la API requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Catálogos (solo lectura)
	catalogHandler := NewCatalogHandler(deps.Catalogs)
	protected.Get("/catalogos/:catalogo", catalogHandler.List)

	// Documentos: compras, ventas, pedidos, ordenesproduccion, fichastecnicas
	documentHandler := NewDocumentHandler(deps.Documents, deps.DocumentPDF)
	for _, cfg := range document.Configs() {
		documentHandler.Register(protected, cfg)
	}
}
