package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/internal/application/documents"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Produccion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/restapi"
	httpRouter "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("persistencia", cfg.Persistence.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: API REST remota (por defecto) o PostgreSQL propio
	var (
		store       repository.DocumentStore
		catalogRepo repository.CatalogRepository
	)
	switch cfg.Persistence.Driver {
	case config.DriverPostgres:
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones de PostgreSQL")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		store = postgres.NewDocumentStore(pool)
		catalogRepo = postgres.NewCatalogRepository(pool)
	default:
		client := restapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log.Component("restapi"))
		store = restapi.NewDocumentStore(client)
		catalogRepo = restapi.NewCatalogRepository(client)
		log.Info().Str("base_url", cfg.Upstream.BaseURL).Msg("persistencia remota")
	}

	catalogCache, closeCache := cache.NewCatalogCache(cfg.Redis, log.Component("cache"))
	defer func() {
		if err := closeCache(); err != nil {
			log.Warn().Err(err).Msg("cerrar caché de catálogos")
		}
	}()
	catalogUC := catalog.NewUseCase(catalogRepo, catalogCache, cfg.Catalog.CacheTTL, log.Component("catalogos"))
	documentSvc := documents.NewService(store, catalogUC, log.Component("documentos"))

	// PDF: comprobantes de venta y de orden de producción
	pdfGenerator := infrapdf.NewMarotoReceiptGenerator(cfg.App.Company)
	documentPDF := documents.NewPDFUseCase(documentSvc, catalogUC, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name + " API",
		}))
	} else {
		log.Warn().Str("archivo", cfg.Docs.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Documents:   documentSvc,
		DocumentPDF: documentPDF,
		Catalogs:    catalogUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
