// seed_catalog carga entradas de catálogo (proveedores, insumos, productos,
// clientes) en PostgreSQL a partir de un CSV exportado de la hoja de cálculo.
//
// Uso: go run ./cmd/seed_catalog <catalogo> [ruta.csv] [-latin1]
//
// Columnas: id;nombre;contacto;email;tipo_documento;numero_documento;precio;activo
// La primera fila es el encabezado. Con -latin1 el archivo se lee como ISO-8859-1.
// Requiere las mismas variables de entorno de la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog <proveedores|insumos|productos|clientes> [ruta.csv] [-latin1]")
		os.Exit(2)
	}
	cat := entity.Catalog(os.Args[1])
	if !cat.Valid() {
		fmt.Fprintf(os.Stderr, "catálogo desconocido: %s\n", os.Args[1])
		os.Exit(2)
	}
	csvPath := string(cat) + ".csv"
	latin1 := false
	for _, a := range os.Args[2:] {
		if a == "-latin1" {
			latin1 = true
			continue
		}
		csvPath = a
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var src io.Reader = f
	if latin1 {
		src = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	entries, err := readEntries(cat, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_catalog"})

	ctx := context.Background()
	if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	err = postgres.NewTxRunner(pool).Run(ctx, func(q postgres.Querier) error {
		repo := postgres.NewCatalogRepository(q)
		for _, e := range entries {
			if err := repo.Upsert(ctx, e); err != nil {
				return fmt.Errorf("entrada %d: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("carga del catálogo")
	}
	log.Info().Str("catalogo", string(cat)).Int("entradas", len(entries)).Msg("catálogo cargado")
}

// readEntries lee el CSV separado por punto y coma. Las filas sin id o sin
// nombre se omiten.
func readEntries(cat entity.Catalog, src io.Reader) ([]*entity.CatalogEntry, error) {
	r := csv.NewReader(src)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []*entity.CatalogEntry
	for i, row := range rows {
		if i == 0 {
			continue
		}
		col := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}
		id, err := strconv.Atoi(col(0))
		if err != nil || id <= 0 || col(1) == "" {
			continue
		}
		e := &entity.CatalogEntry{
			Catalog:        cat,
			ID:             id,
			Name:           col(1),
			Contact:        col(2),
			Email:          col(3),
			DocumentType:   col(4),
			DocumentNumber: col(5),
			Active:         true,
		}
		if p := strings.ReplaceAll(col(6), ",", "."); p != "" {
			price, err := decimal.NewFromString(p)
			if err != nil {
				return nil, fmt.Errorf("fila %d: precio %q inválido", i+1, col(6))
			}
			e.Price = price
		}
		if a := strings.ToLower(col(7)); a == "0" || a == "false" || a == "no" {
			e.Active = false
		}
		out = append(out, e)
	}
	return out, nil
}
