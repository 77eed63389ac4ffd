package dto

import "github.com/jhoicas/Produccion-api/internal/domain/document"

// DocumentListRequest filtros de GET /api/{recurso}.
type DocumentListRequest struct {
	PageRequest
	OnlyActive bool `query:"activos"`
}

// DocumentListResponse página de documentos (vista editable de cada uno).
type DocumentListResponse struct {
	Items []document.Record `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DocumentResult resultado de una operación: documento resultante y aviso.
type DocumentResult struct {
	Document     document.Record       `json:"document,omitempty"`
	Notification document.Notification `json:"notification"`
}

// PreviewResponse respuesta de POST /api/{recurso}/validar.
// Payload solo va cuando el borrador es válido.
type PreviewResponse struct {
	Valid   bool              `json:"valid"`
	Errors  map[string]string `json:"errors"`
	Draft   document.Record   `json:"draft"`
	Payload document.Record   `json:"payload,omitempty"`
}

// CancelRequest body de PATCH /api/{recurso}/:id/anular.
type CancelRequest struct {
	Reason string `json:"motivo"`
}

// StatusRequest body de PATCH /api/{recurso}/:id/estado.
type StatusRequest struct {
	Status string `json:"estado" validate:"required"`
}

// PaymentRequest body de PATCH /api/{recurso}/:id/pago.
type PaymentRequest struct {
	Paid        *bool  `json:"pagado" validate:"required"`
	PaymentDate string `json:"fecha_pago,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ValidationErrorResponse cuerpo 422 con los errores por campo.
type ValidationErrorResponse struct {
	Code         string                `json:"code"`
	Message      string                `json:"message"`
	Errors       map[string]string     `json:"errors"`
	Notification document.Notification `json:"notification"`
}

// PolicyErrorResponse cuerpo de un rechazo de ciclo de vida o de persistencia.
type PolicyErrorResponse struct {
	Code         string                `json:"code"`
	Message      string                `json:"message"`
	Notification document.Notification `json:"notification"`
}
