package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnsupported  = errors.New("operación no soportada para este tipo de documento")
)

// Reglas de ciclo de vida que pueden bloquear una transición.
const (
	RuleReasonRequired   = "MOTIVO_REQUERIDO"
	RuleAlreadyCancelled = "YA_ANULADO"
	RuleAlreadyActive    = "YA_ACTIVO"
	RuleInactive         = "DOCUMENTO_INACTIVO"
	RuleInvalidStatus    = "ESTADO_INVALIDO"
	RuleNotFound         = "NO_ENCONTRADO"
	RuleInFlight         = "EN_CURSO"
	RuleUnsupported      = "NO_SOPORTADO"
	RulePaymentTracking  = "SIN_PAGO"
	RulePaymentStatus    = "ESTADO_DE_PAGO"
)

// ValidationError agrupa los errores de un borrador por campo.
// Las claves de líneas llevan el índice como sufijo (cantidad_2).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError construye el error; devuelve nil si no hay campos.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// PolicyError indica que una transición viola una regla del ciclo de vida.
// Se rechaza antes de cualquier llamada a persistencia.
type PolicyError struct {
	Rule    string
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

// Is: las reglas de "no encontrado" equivalen a ErrNotFound; el resto a ErrConflict.
func (e *PolicyError) Is(target error) bool {
	if e.Rule == RuleNotFound {
		return target == ErrNotFound
	}
	if e.Rule == RuleUnsupported {
		return target == ErrUnsupported
	}
	return target == ErrConflict
}

// NewPolicyError construye un PolicyError.
func NewPolicyError(rule, message string) *PolicyError {
	return &PolicyError{Rule: rule, Message: message}
}

// PersistenceError error del colaborador de persistencia (API remota o base de datos).
// Message es el detalle enviado por el servidor, si lo hubo.
type PersistenceError struct {
	Status  int
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("persistencia (%d): %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return "persistencia: " + e.Err.Error()
	}
	return fmt.Sprintf("persistencia: estado %d", e.Status)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UserMessage prefiere el detalle del servidor sobre el mensaje genérico.
func (e *PersistenceError) UserMessage(fallback string) string {
	if strings.TrimSpace(e.Message) != "" {
		return fallback + ": " + e.Message
	}
	if e.Err != nil {
		return fallback + ": " + e.Err.Error()
	}
	return fallback
}
