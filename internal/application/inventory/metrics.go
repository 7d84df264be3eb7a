package inventory

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockflow-api/internal/domain"
)

const instrumentationName = "github.com/jhoicas/stockflow-api/inventory"

type ledgerMetrics struct {
	tracer   trace.Tracer
	created  metric.Int64Counter
	rejected metric.Int64Counter
}

func newLedgerMetrics() ledgerMetrics {
	meter := otel.Meter(instrumentationName)
	created, err := meter.Int64Counter("ledger.movements.created",
		metric.WithDescription("Movimientos persistidos en el ledger"))
	if err != nil {
		created = noop.Int64Counter{}
	}
	rejected, err := meter.Int64Counter("ledger.movements.rejected",
		metric.WithDescription("Operaciones del ledger rechazadas"))
	if err != nil {
		rejected = noop.Int64Counter{}
	}
	return ledgerMetrics{
		tracer:   otel.Tracer(instrumentationName),
		created:  created,
		rejected: rejected,
	}
}

func (m ledgerMetrics) reject(ctx context.Context, op string, err error) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("reason", rejectReason(err)),
	))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	}
	return "error"
}
