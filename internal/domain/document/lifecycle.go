package document

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Action acción de ciclo de vida sobre un documento existente.
type Action string

const (
	ActionCreate       Action = "crear"
	ActionUpdate       Action = "actualizar"
	ActionDeactivate   Action = "anular"
	ActionReactivate   Action = "activar"
	ActionChangeStatus Action = "cambiar_estado"
	ActionSetPaid      Action = "registrar_pago"
	ActionProduce      Action = "producir"
	ActionDelete       Action = "eliminar"
)

// Transition resultado de una transición válida: el documento resultante y el
// payload parcial que se envía por la ruta de ciclo de vida (nil si la acción
// no lleva cuerpo).
type Transition struct {
	Action Action
	Next   entity.Document
	Patch  Record
}

// Deactivate anula un documento activo (o inactivo sin anulación) con un motivo.
func Deactivate(cfg *KindConfig, doc entity.Document, reason string) (Transition, error) {
	if err := requireLifecycle(cfg); err != nil {
		return Transition{}, err
	}
	if err := RequireReason(reason); err != nil {
		return Transition{}, err
	}
	reason = strings.TrimSpace(reason)
	if doc.Activity.IsCancelled() {
		return Transition{}, domain.NewPolicyError(domain.RuleAlreadyCancelled,
			fmt.Sprintf("%s ya fue %s.", cfg.Subject(), cfg.Agree("anulad")))
	}
	next := doc
	next.Activity = entity.Cancelled(reason)
	return Transition{
		Action: ActionDeactivate,
		Next:   next,
		Patch:  Record{WireActive: false, WireReason: reason},
	}, nil
}

// RequireReason rechaza un motivo de anulación vacío o solo con espacios.
func RequireReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.NewPolicyError(domain.RuleReasonRequired, "Debe proporcionar un motivo de anulación.")
	}
	return nil
}

// Reactivate vuelve a activar un documento inactivo que nunca fue anulado.
// Un documento anulado no puede reactivarse.
func Reactivate(cfg *KindConfig, doc entity.Document) (Transition, error) {
	if err := requireLifecycle(cfg); err != nil {
		return Transition{}, err
	}
	if doc.Activity.IsCancelled() {
		return Transition{}, domain.NewPolicyError(domain.RuleAlreadyCancelled,
			fmt.Sprintf("No se puede reactivar %s %s.", withIndefinite(cfg.Noun), cfg.Agree("anulad")))
	}
	if doc.Activity.IsActive() {
		return Transition{}, domain.NewPolicyError(domain.RuleAlreadyActive,
			fmt.Sprintf("%s ya está %s.", cfg.Subject(), cfg.Agree("activ")))
	}
	next := doc
	next.Activity = entity.Active()
	return Transition{
		Action: ActionReactivate,
		Next:   next,
		Patch:  Record{WireActive: true},
	}, nil
}

// ChangeStatus cambia la etiqueta de estado. La etiqueta debe pertenecer al
// conjunto del tipo y el documento no puede estar anulado. Los estados de pago
// solo los asigna ApplyPaid y "producida" solo la acción producir.
func ChangeStatus(cfg *KindConfig, doc entity.Document, label string) (Transition, error) {
	if !cfg.HasField(FieldStatus) || len(cfg.StatusLabels) == 0 {
		return Transition{}, unsupported(cfg, "cambio de estado")
	}
	if doc.Activity.IsCancelled() {
		return Transition{}, domain.NewPolicyError(domain.RuleAlreadyCancelled,
			fmt.Sprintf("No se puede cambiar el estado de %s %s.", withIndefinite(cfg.Noun), cfg.Agree("anulad")))
	}
	canonical, ok := cfg.AllowsStatus(label)
	if !ok {
		return Transition{}, domain.NewPolicyError(domain.RuleInvalidStatus,
			fmt.Sprintf("El estado %q no es válido. Estados permitidos: %s.", strings.TrimSpace(label), strings.Join(cfg.StatusLabels, ", ")))
	}
	if cfg.PaymentTracked && isPaymentStatus(canonical) {
		return Transition{}, domain.NewPolicyError(domain.RulePaymentStatus,
			fmt.Sprintf("El estado %q se asigna al marcar o desmarcar el pago.", canonical))
	}
	if cfg.Producible && canonical == entity.StatusProduced {
		return Transition{}, domain.NewPolicyError(domain.RuleInvalidStatus,
			fmt.Sprintf("El estado %q se asigna con la acción producir.", canonical))
	}
	next := doc
	next.Status = canonical
	return Transition{
		Action: ActionChangeStatus,
		Next:   next,
		Patch:  Record{cfg.Wire(FieldStatus): canonical},
	}, nil
}

// Produce marca una orden de producción como producida. La orden debe estar activa.
func Produce(cfg *KindConfig, doc entity.Document) (Transition, error) {
	if !cfg.Producible {
		return Transition{}, unsupported(cfg, "producción")
	}
	if !doc.Activity.IsActive() {
		return Transition{}, domain.NewPolicyError(domain.RuleInactive,
			fmt.Sprintf("No se puede producir %s %s.", withIndefinite(cfg.Noun), stateWord(cfg, doc.Activity)))
	}
	next := doc
	next.Status = entity.StatusProduced
	return Transition{Action: ActionProduce, Next: next}, nil
}

// ApplyPaid cambia el eje de pago de un borrador. Pagado pasa a "Pendiente de
// Preparación" y conserva la fecha de pago salvo que se indique una nueva; no
// pagado pasa a "Esperando Pago" y borra la fecha de pago.
func ApplyPaid(cfg *KindConfig, d *Draft, paid bool, paymentDate string) error {
	if !cfg.PaymentTracked {
		return domain.NewPolicyError(domain.RulePaymentTracking,
			fmt.Sprintf("%s no maneja estado de pago.", cfg.Subject()))
	}
	if d.Activity.IsCancelled() {
		return domain.NewPolicyError(domain.RuleAlreadyCancelled,
			fmt.Sprintf("No se puede registrar el pago de %s %s.", withIndefinite(cfg.Noun), cfg.Agree("anulad")))
	}
	d.Paid = paid
	if paid {
		d.Status = entity.StatusPendingPreparation
		if v := strings.TrimSpace(paymentDate); v != "" {
			d.PaymentDate = v
		}
		return nil
	}
	d.Status = entity.StatusAwaitingPayment
	d.PaymentDate = ""
	return nil
}

// CheckEditable rechaza la edición completa de un documento anulado.
func CheckEditable(cfg *KindConfig, doc entity.Document) error {
	if cfg.Lifecycle && doc.Activity.IsCancelled() {
		return domain.NewPolicyError(domain.RuleAlreadyCancelled,
			fmt.Sprintf("No se puede editar %s %s.", withIndefinite(cfg.Noun), cfg.Agree("anulad")))
	}
	return nil
}

// CheckPrintable solo se generan comprobantes de documentos activos.
func CheckPrintable(cfg *KindConfig, doc entity.Document) error {
	if !cfg.Printable {
		return unsupported(cfg, "impresión")
	}
	if !doc.Activity.IsActive() {
		return domain.NewPolicyError(domain.RuleInactive,
			fmt.Sprintf("No se puede imprimir %s %s.", withIndefinite(cfg.Noun), stateWord(cfg, doc.Activity)))
	}
	return nil
}

// CheckDeletable solo los tipos sin ciclo de vida admiten borrado físico.
func CheckDeletable(cfg *KindConfig) error {
	if !cfg.Deletable {
		return unsupported(cfg, "eliminación")
	}
	return nil
}

func isPaymentStatus(label string) bool {
	return label == entity.StatusAwaitingPayment || label == entity.StatusPendingPreparation
}

func requireLifecycle(cfg *KindConfig) error {
	if !cfg.Lifecycle {
		return unsupported(cfg, "anulación y activación")
	}
	return nil
}

func unsupported(cfg *KindConfig, what string) error {
	return domain.NewPolicyError(domain.RuleUnsupported,
		fmt.Sprintf("%s no admite %s.", cfg.Subject(), what))
}

func stateWord(cfg *KindConfig, a entity.Activity) string {
	switch a.State {
	case entity.StateCancelled:
		return cfg.Agree("anulad")
	case entity.StateInactive:
		return cfg.Agree("inactiv")
	}
	return cfg.Agree("activ")
}
