package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// TriggerSink contrato del motor de reglas.
type TriggerSink interface {
	OnMovementCreated(ctx context.Context, m entity.Movement) error
	OnStockBelowMin(ctx context.Context, p entity.Product, currentStock int) error
	OnStockAboveMax(ctx context.Context, p entity.Product, currentStock int) error
}

// Sender transporte de disparadores ya serializables (Kafka, webhook).
type Sender interface {
	Send(ctx context.Context, t Trigger) error
}

// SenderSink adapta un Sender al contrato TriggerSink.
type SenderSink struct {
	sender Sender
	now    func() time.Time
}

// NewSenderSink construye el adaptador.
func NewSenderSink(sender Sender) *SenderSink {
	return &SenderSink{sender: sender, now: time.Now}
}

func (s *SenderSink) OnMovementCreated(ctx context.Context, m entity.Movement) error {
	return s.sender.Send(ctx, MovementTrigger(m, s.now()))
}

func (s *SenderSink) OnStockBelowMin(ctx context.Context, p entity.Product, currentStock int) error {
	return s.sender.Send(ctx, StockTrigger(EventStockBelowMin, p, currentStock, s.now()))
}

func (s *SenderSink) OnStockAboveMax(ctx context.Context, p entity.Product, currentStock int) error {
	return s.sender.Send(ctx, StockTrigger(EventStockAboveMax, p, currentStock, s.now()))
}

// MultiSink reenvía a varios sinks; todos reciben el disparador aunque alguno falle.
type MultiSink []TriggerSink

func (ms MultiSink) OnMovementCreated(ctx context.Context, m entity.Movement) error {
	return ms.each(func(s TriggerSink) error { return s.OnMovementCreated(ctx, m) })
}

func (ms MultiSink) OnStockBelowMin(ctx context.Context, p entity.Product, currentStock int) error {
	return ms.each(func(s TriggerSink) error { return s.OnStockBelowMin(ctx, p, currentStock) })
}

func (ms MultiSink) OnStockAboveMax(ctx context.Context, p entity.Product, currentStock int) error {
	return ms.each(func(s TriggerSink) error { return s.OnStockAboveMax(ctx, p, currentStock) })
}

func (ms MultiSink) each(fn func(TriggerSink) error) error {
	var errs []error
	for _, s := range ms {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink descarta todos los disparadores (sin motor configurado).
type NopSink struct{}

func (NopSink) OnMovementCreated(context.Context, entity.Movement) error { return nil }
func (NopSink) OnStockBelowMin(context.Context, entity.Product, int) error { return nil }
func (NopSink) OnStockAboveMax(context.Context, entity.Product, int) error { return nil }

// Dispatcher frontera de aislamiento: captura errores y panics del sink y solo los registra.
type Dispatcher struct {
	sink TriggerSink
	log  *logger.Logger
}

// NewDispatcher construye el dispatcher. sink nil equivale a NopSink.
func NewDispatcher(sink TriggerSink, log *logger.Logger) *Dispatcher {
	if sink == nil {
		sink = NopSink{}
	}
	return &Dispatcher{sink: sink, log: log.Named("workflow")}
}

// MovementCreated dispara "movimiento creado".
func (d *Dispatcher) MovementCreated(ctx context.Context, m entity.Movement) {
	d.safe(EventMovementCreated, m.ProductID, m.StoreID, func() error {
		return d.sink.OnMovementCreated(ctx, m)
	})
}

// DispatchAlert mapea LOW/CRITICAL a "bajo mínimo" y OVERSTOCK a "sobre máximo"; el resto no dispara nada.
func (d *Dispatcher) DispatchAlert(ctx context.Context, alert stock.Alert, p entity.Product, currentStock int) {
	switch {
	case alert.IsBelowMin():
		d.safe(EventStockBelowMin, p.ID, p.StoreID, func() error {
			return d.sink.OnStockBelowMin(ctx, p, currentStock)
		})
	case alert == stock.AlertOverstock:
		d.safe(EventStockAboveMax, p.ID, p.StoreID, func() error {
			return d.sink.OnStockAboveMax(ctx, p, currentStock)
		})
	}
}

// HandleMovementCreated suscriptor de MOVEMENT_CREATED en el bus de eventos.
func (d *Dispatcher) HandleMovementCreated(ctx context.Context, ev events.Event) error {
	d.MovementCreated(ctx, ev.Movement)
	return nil
}

func (d *Dispatcher) safe(ev Event, productID, storeID string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("trigger", string(ev)).
				Str("product_id", productID).
				Str("store_id", storeID).
				Str("panic", fmt.Sprint(r)).
				Msg("panic en el motor de workflows")
		}
	}()
	if err := fn(); err != nil {
		d.log.Error().Err(err).
			Str("trigger", string(ev)).
			Str("product_id", productID).
			Str("store_id", storeID).
			Msg("disparador de workflow falló")
	}
}
