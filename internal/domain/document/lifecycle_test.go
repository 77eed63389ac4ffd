package document_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

func requireRule(t *testing.T, err error, rule string) {
	t.Helper()
	var perr *domain.PolicyError
	require.True(t, errors.As(err, &perr), "se esperaba PolicyError, obtenido %v", err)
	assert.Equal(t, rule, perr.Rule)
}

// ── Anulación ────────────────────────────────────────────────────────────────

func TestDeactivate_SinMotivo(t *testing.T) {
	cfg := mustConfig(t, entity.KindPurchase)
	doc := entity.Document{ID: 1, Activity: entity.Active()}
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := document.Deactivate(cfg, doc, reason)
		requireRule(t, err, domain.RuleReasonRequired)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	}
}

func TestDeactivate_ConMotivo(t *testing.T) {
	cfg := mustConfig(t, entity.KindPurchase)
	doc := entity.Document{ID: 1, Status: entity.StatusCompleted, Activity: entity.Active()}

	tr, err := document.Deactivate(cfg, doc, "  factura duplicada ")
	require.NoError(t, err)
	assert.True(t, tr.Next.Activity.IsCancelled())
	assert.Equal(t, "factura duplicada", tr.Next.Activity.Reason)
	assert.Equal(t, entity.StatusCompleted, tr.Next.Status, "el estado no cambia al anular")
	assert.Equal(t, document.Record{"activo": false, "anulacion": "factura duplicada"}, tr.Patch)
	assert.True(t, doc.Activity.IsActive(), "el documento original no se modifica")
}

func TestDeactivate_YaAnulado(t *testing.T) {
	cfg := mustConfig(t, entity.KindSale)
	doc := entity.Document{ID: 1, Activity: entity.Cancelled("error")}
	_, err := document.Deactivate(cfg, doc, "otra vez")
	requireRule(t, err, domain.RuleAlreadyCancelled)
}

// ── Reactivación ─────────────────────────────────────────────────────────────

func TestReactivate_DespuesDeAnularFalla(t *testing.T) {
	cfg := mustConfig(t, entity.KindPurchase)
	tr, err := document.Deactivate(cfg, entity.Document{ID: 3, Activity: entity.Active()}, "motivo")
	require.NoError(t, err)

	_, err = document.Reactivate(cfg, tr.Next)
	requireRule(t, err, domain.RuleAlreadyCancelled)
}

func TestReactivate_InactivoSinAnulacion(t *testing.T) {
	for _, kind := range []entity.Kind{entity.KindPurchase, entity.KindSale, entity.KindOrder, entity.KindProductionOrder} {
		cfg := mustConfig(t, kind)
		tr, err := document.Reactivate(cfg, entity.Document{ID: 3, Activity: entity.Inactive()})
		require.NoError(t, err, "tipo %s", kind)
		assert.True(t, tr.Next.Activity.IsActive())
		assert.Equal(t, document.Record{"activo": true}, tr.Patch)
	}
}

func TestReactivate_YaActivo(t *testing.T) {
	cfg := mustConfig(t, entity.KindPurchase)
	_, err := document.Reactivate(cfg, entity.Document{ID: 3, Activity: entity.Active()})
	requireRule(t, err, domain.RuleAlreadyActive)
}

func TestLifecycle_FichaTecnicaNoSoportada(t *testing.T) {
	cfg := mustConfig(t, entity.KindTechnicalSheet)
	_, err := document.Deactivate(cfg, entity.Document{Activity: entity.Active()}, "x")
	requireRule(t, err, domain.RuleUnsupported)
	assert.True(t, errors.Is(err, domain.ErrUnsupported))
	assert.NoError(t, document.CheckDeletable(cfg))
	assert.Error(t, document.CheckDeletable(mustConfig(t, entity.KindPurchase)))
}

// ── Estados ──────────────────────────────────────────────────────────────────

func TestChangeStatus_EjesIndependientes(t *testing.T) {
	cfg := mustConfig(t, entity.KindSale)
	doc := entity.Document{ID: 1, Status: entity.StatusPending, Activity: entity.Inactive()}

	tr, err := document.ChangeStatus(cfg, doc, "En Preparación")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInPreparation, tr.Next.Status)
	assert.Equal(t, entity.StateInactive, tr.Next.Activity.State, "el cambio de estado no toca la actividad")
	assert.Equal(t, document.Record{"estado": entity.StatusInPreparation}, tr.Patch)
}

func TestChangeStatus_Rechazos(t *testing.T) {
	cfg := mustConfig(t, entity.KindSale)
	_, err := document.ChangeStatus(cfg, entity.Document{Activity: entity.Active()}, "inventado")
	requireRule(t, err, domain.RuleInvalidStatus)

	_, err = document.ChangeStatus(cfg, entity.Document{Activity: entity.Cancelled("x")}, entity.StatusDone)
	requireRule(t, err, domain.RuleAlreadyCancelled)
}

func TestChangeStatus_EstadosDePagoSoloPorPago(t *testing.T) {
	for _, kind := range []entity.Kind{entity.KindSale, entity.KindOrder} {
		cfg := mustConfig(t, kind)

		unpaid := entity.Document{ID: 1, Status: entity.StatusAwaitingPayment, Activity: entity.Active()}
		_, err := document.ChangeStatus(cfg, unpaid, entity.StatusPendingPreparation)
		requireRule(t, err, domain.RulePaymentStatus)

		paid := entity.Document{ID: 1, Status: entity.StatusPendingPreparation, Paid: true,
			PaymentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Activity: entity.Active()}
		_, err = document.ChangeStatus(cfg, paid, "esperando pago")
		requireRule(t, err, domain.RulePaymentStatus)

		// El resto de etiquetas sigue disponible.
		tr, err := document.ChangeStatus(cfg, paid, entity.StatusInPreparation)
		require.NoError(t, err)
		assert.True(t, tr.Next.Paid, "tipo %s", kind)
	}
}

func TestChangeStatus_ProducidaSoloPorProducir(t *testing.T) {
	cfg := mustConfig(t, entity.KindProductionOrder)
	doc := entity.Document{ID: 3, Status: entity.StatusPending, Activity: entity.Active()}

	_, err := document.ChangeStatus(cfg, doc, entity.StatusProduced)
	requireRule(t, err, domain.RuleInvalidStatus)

	tr, err := document.ChangeStatus(cfg, doc, entity.StatusInProduction)
	require.NoError(t, err)
	assert.Equal(t, document.Record{"estado": entity.StatusInProduction}, tr.Patch)
}

// ── Producción ───────────────────────────────────────────────────────────────

func TestProduce(t *testing.T) {
	cfg := mustConfig(t, entity.KindProductionOrder)

	tr, err := document.Produce(cfg, entity.Document{ID: 8, Status: entity.StatusPending, Activity: entity.Active()})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProduced, tr.Next.Status)
	assert.Nil(t, tr.Patch)

	_, err = document.Produce(cfg, entity.Document{ID: 8, Activity: entity.Inactive()})
	requireRule(t, err, domain.RuleInactive)
	_, err = document.Produce(cfg, entity.Document{ID: 8, Activity: entity.Cancelled("x")})
	requireRule(t, err, domain.RuleInactive)

	_, err = document.Produce(mustConfig(t, entity.KindSale), entity.Document{Activity: entity.Active()})
	requireRule(t, err, domain.RuleUnsupported)
}

// ── Pago ─────────────────────────────────────────────────────────────────────

func TestApplyPaid_MarcarConservaFechaDePago(t *testing.T) {
	cfg := mustConfig(t, entity.KindSale)
	d := document.Draft{Status: entity.StatusAwaitingPayment, PaymentDate: "2024-05-01", Activity: entity.Active()}

	require.NoError(t, document.ApplyPaid(cfg, &d, true, ""))
	assert.True(t, d.Paid)
	assert.Equal(t, entity.StatusPendingPreparation, d.Status)
	assert.Equal(t, "2024-05-01", d.PaymentDate)
}

func TestApplyPaid_DesmarcarBorraFechaDePago(t *testing.T) {
	cfg := mustConfig(t, entity.KindOrder)
	d := document.Draft{Status: entity.StatusPendingPreparation, Paid: true, PaymentDate: "2024-05-01", Activity: entity.Active()}

	require.NoError(t, document.ApplyPaid(cfg, &d, false, ""))
	assert.False(t, d.Paid)
	assert.Equal(t, entity.StatusAwaitingPayment, d.Status)
	assert.Empty(t, d.PaymentDate)
}

func TestApplyPaid_Rechazos(t *testing.T) {
	d := document.Draft{Activity: entity.Active()}
	err := document.ApplyPaid(mustConfig(t, entity.KindPurchase), &d, true, "")
	requireRule(t, err, domain.RulePaymentTracking)

	d = document.Draft{Status: entity.StatusAwaitingPayment, Activity: entity.Cancelled("x")}
	err = document.ApplyPaid(mustConfig(t, entity.KindSale), &d, true, "2024-01-01")
	requireRule(t, err, domain.RuleAlreadyCancelled)
	assert.False(t, d.Paid, "un rechazo no modifica el borrador")
	assert.Equal(t, entity.StatusAwaitingPayment, d.Status)
}

func TestCheckPrintable(t *testing.T) {
	cfg := mustConfig(t, entity.KindSale)
	assert.NoError(t, document.CheckPrintable(cfg, entity.Document{Activity: entity.Active()}))
	requireRule(t, document.CheckPrintable(cfg, entity.Document{Activity: entity.Cancelled("x")}), domain.RuleInactive)
	requireRule(t, document.CheckPrintable(mustConfig(t, entity.KindPurchase), entity.Document{Activity: entity.Active()}), domain.RuleUnsupported)
}

func TestNotifications(t *testing.T) {
	cfg := mustConfig(t, entity.KindPurchase)
	n := document.Succeeded(cfg, document.ActionDeactivate)
	assert.Equal(t, document.LevelSuccess, n.Level)
	assert.Equal(t, "La compra ha sido anulada correctamente.", n.Text)

	n = document.Failed(cfg, document.ActionDeactivate, &domain.PersistenceError{Status: 500, Message: "sin conexión"})
	assert.Equal(t, "Hubo un problema al anular la compra: sin conexión", n.Text)

	n = document.Failed(cfg, document.ActionDeactivate, &domain.PersistenceError{Status: 500})
	assert.Equal(t, "Hubo un problema al anular la compra", n.Text)

	n = document.Succeeded(mustConfig(t, entity.KindOrder), document.ActionCreate)
	assert.Equal(t, "El pedido ha sido creado correctamente.", n.Text)
}
