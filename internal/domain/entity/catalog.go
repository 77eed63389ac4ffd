package entity

import "github.com/shopspring/decimal"

// Catalog identifica un catálogo de solo lectura.
type Catalog string

const (
	CatalogSuppliers   Catalog = "proveedores"
	CatalogSupplyItems Catalog = "insumos"
	CatalogProducts    Catalog = "productos"
	CatalogCustomers   Catalog = "clientes"
)

// Catalogs lista de catálogos conocidos.
func Catalogs() []Catalog {
	return []Catalog{CatalogSuppliers, CatalogSupplyItems, CatalogProducts, CatalogCustomers}
}

// IDField nombre del campo identificador en la API remota (id_proveedor, id_insumo, ...).
func (c Catalog) IDField() string {
	switch c {
	case CatalogSuppliers:
		return "id_proveedor"
	case CatalogSupplyItems:
		return "id_insumo"
	case CatalogProducts:
		return "id_producto"
	case CatalogCustomers:
		return "id_cliente"
	}
	return "id"
}

// Valid indica si el catálogo es conocido.
func (c Catalog) Valid() bool {
	switch c {
	case CatalogSuppliers, CatalogSupplyItems, CatalogProducts, CatalogCustomers:
		return true
	}
	return false
}

// CatalogEntry proveedor, insumo, producto o cliente.
// Price solo aplica a productos (precio de venta) e insumos.
type CatalogEntry struct {
	Catalog        Catalog
	ID             int
	Name           string
	Contact        string
	Email          string
	DocumentType   string // tipo de documento del cliente (CC, NIT)
	DocumentNumber string
	Price          decimal.Decimal
	Active         bool
}
