package dto

import "github.com/shopspring/decimal"

// CatalogListRequest filtros de GET /api/catalogos/:catalogo.
type CatalogListRequest struct {
	OnlyActive bool `query:"activos"`
}

// CatalogEntryResponse entrada de catálogo para los selectores de los formularios.
type CatalogEntryResponse struct {
	ID             int             `json:"id"`
	Name           string          `json:"nombre"`
	Contact        string          `json:"contacto,omitempty"`
	Email          string          `json:"correo,omitempty"`
	DocumentType   string          `json:"tipo_documento,omitempty"`
	DocumentNumber string          `json:"numero_documento,omitempty"`
	Price          decimal.Decimal `json:"precio"`
	Active         bool            `json:"activo"`
}
