package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifica el tipo de documento comercial.
type Kind string

const (
	KindPurchase        Kind = "purchase"         // compra a proveedor
	KindSale            Kind = "sale"             // venta a cliente
	KindOrder           Kind = "order"            // pedido de cliente
	KindProductionOrder Kind = "production_order" // orden de producción
	KindTechnicalSheet  Kind = "technical_sheet"  // ficha técnica (lista de materiales)
)

// Etiquetas de estado observadas en los documentos.
const (
	StatusCompleted          = "Completado"
	StatusAwaitingPayment    = "Esperando Pago"
	StatusPendingPreparation = "Pendiente de Preparación"
	StatusPending            = "pendiente"
	StatusInPreparation      = "en preparación"
	StatusDone               = "completado"
	StatusInProduction       = "en producción"
	StatusProduced           = "producida"
)

// ActivityState eje activo/anulado del documento. Es un único estado etiquetado:
// un documento anulado siempre está inactivo y no puede volver a activarse.
type ActivityState int

const (
	StateActive ActivityState = iota
	StateInactive
	StateCancelled
)

func (s ActivityState) String() string {
	switch s {
	case StateActive:
		return "activo"
	case StateInactive:
		return "inactivo"
	case StateCancelled:
		return "anulado"
	}
	return "desconocido"
}

// Activity estado de actividad con el motivo de anulación (solo en StateCancelled).
type Activity struct {
	State  ActivityState
	Reason string
}

// Active crea el estado activo.
func Active() Activity { return Activity{State: StateActive} }

// Inactive crea el estado inactivo sin anulación.
func Inactive() Activity { return Activity{State: StateInactive} }

// Cancelled crea el estado anulado con su motivo.
func Cancelled(reason string) Activity { return Activity{State: StateCancelled, Reason: reason} }

// IsActive indica si el documento está activo.
func (a Activity) IsActive() bool { return a.State == StateActive }

// IsCancelled indica si el documento fue anulado.
func (a Activity) IsCancelled() bool { return a.State == StateCancelled }

// ActivityFromFlags reconstruye el estado desde el par (activo, anulacion) de la API.
func ActivityFromFlags(active bool, reason string) Activity {
	if active {
		return Active()
	}
	if reason != "" {
		return Cancelled(reason)
	}
	return Inactive()
}

// Flags devuelve el par (activo, anulacion) para persistir.
func (a Activity) Flags() (bool, string) {
	switch a.State {
	case StateActive:
		return true, ""
	case StateCancelled:
		return false, a.Reason
	default:
		return false, ""
	}
}

// Document cabecera y líneas de un documento ya normalizado (forma canónica).
// Las fechas en cero indican ausencia.
type Document struct {
	ID               int
	Kind             Kind
	CounterpartyID   int
	Number           string
	Description      string
	Supplies         string
	RegistrationDate time.Time // fecha de registro u orden; inmutable tras crear
	TransactionDate  time.Time // fecha de compra o venta
	DeliveryDate     time.Time
	PaymentDate      time.Time
	Status           string
	Paid             bool
	Activity         Activity
	Items            []LineItem
	Total            decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LineItem línea de un documento: referencia a una entidad del catálogo.
type LineItem struct {
	RefID     int
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
