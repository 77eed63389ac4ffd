package document

import (
	"errors"
	"fmt"

	"github.com/jhoicas/Produccion-api/internal/domain"
)

// Level severidad de una notificación.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notification aviso que acompaña al resultado de una operación. La capa de
// presentación decide cómo mostrarlo.
type Notification struct {
	Level Level  `json:"level"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Succeeded aviso de éxito para una acción sobre un documento del tipo.
func Succeeded(cfg *KindConfig, action Action) Notification {
	subject := cfg.Subject()
	var text string
	switch action {
	case ActionCreate:
		text = fmt.Sprintf("%s ha sido %s correctamente.", subject, cfg.Agree("cread"))
	case ActionUpdate, ActionSetPaid:
		text = fmt.Sprintf("%s ha sido %s correctamente.", subject, cfg.Agree("actualizad"))
	case ActionDeactivate:
		text = fmt.Sprintf("%s ha sido %s correctamente.", subject, cfg.Agree("anulad"))
	case ActionReactivate:
		text = fmt.Sprintf("%s ha sido %s correctamente.", subject, cfg.Agree("activad"))
	case ActionChangeStatus:
		text = fmt.Sprintf("El estado de %s %s ha sido actualizado.", article(cfg.Noun, false), cfg.Noun.Text)
	case ActionProduce:
		text = fmt.Sprintf("%s ha sido %s correctamente.", subject, cfg.Agree("producid"))
	case ActionDelete:
		text = fmt.Sprintf("%s ha sido %s.", subject, cfg.Agree("eliminad"))
	default:
		text = "Operación realizada correctamente."
	}
	return Notification{Level: LevelSuccess, Title: "¡Éxito!", Text: text}
}

// Failed aviso de error para una acción. Los errores de validación usan un
// mensaje general (el detalle va por campo); los de persistencia prefieren el
// detalle del servidor.
func Failed(cfg *KindConfig, action Action, err error) Notification {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		if msg, ok := verr.Fields[DuplicateKey]; ok && len(verr.Fields) == 1 {
			return Notification{Level: LevelWarning, Title: "Advertencia", Text: msg}
		}
		return Notification{Level: LevelWarning, Title: "Advertencia", Text: "Por favor, corrija los errores en el formulario."}
	}
	var perr *domain.PolicyError
	if errors.As(err, &perr) {
		return Notification{Level: LevelWarning, Title: "Advertencia", Text: perr.Message}
	}
	fallback := fmt.Sprintf("Hubo un problema al %s %s %s", verb(action), article(cfg.Noun, false), cfg.Noun.Text)
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return Notification{Level: LevelError, Title: "Error", Text: pe.UserMessage(fallback)}
	}
	if err != nil {
		return Notification{Level: LevelError, Title: "Error", Text: fallback + ": " + err.Error()}
	}
	return Notification{Level: LevelError, Title: "Error", Text: fallback}
}

func verb(action Action) string {
	switch action {
	case ActionCreate:
		return "crear"
	case ActionUpdate:
		return "actualizar"
	case ActionDeactivate:
		return "anular"
	case ActionReactivate:
		return "activar"
	case ActionChangeStatus:
		return "cambiar el estado de"
	case ActionSetPaid:
		return "registrar el pago de"
	case ActionProduce:
		return "producir"
	case ActionDelete:
		return "eliminar"
	}
	return "procesar"
}
