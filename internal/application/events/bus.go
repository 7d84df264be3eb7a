// Package events implementa el bus interno de eventos post-commit del ledger.
// Los efectos secundarios (alertas, notificaciones, workflows, caché) se consumen en goroutines
// propias: un fallo en ellos nunca afecta la escritura que los originó.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// Kind tipo de evento publicado por el ledger.
type Kind string

const (
	KindMovementCreated Kind = "MOVEMENT_CREATED"
	KindStockChanged    Kind = "STOCK_CHANGED"
)

var (
	ErrBusClosed = errors.New("bus de eventos cerrado")
	ErrBusFull   = errors.New("bus de eventos lleno")
)

// Event evento emitido tras el commit de una operación del ledger.
// PreviousStock y CurrentStock se capturan bajo el bloqueo de la transacción.
type Event struct {
	Kind          Kind
	ProductID     string
	StoreID       string
	Movement      entity.Movement
	PreviousStock int
	CurrentStock  int
	Version       int64 // versión de la fila de balance tras el commit (0 = desconocida)
	OccurredAt    time.Time
}

// Delta variación neta del balance que produjo el evento.
func (e Event) Delta() int {
	return e.CurrentStock - e.PreviousStock
}

// Handler consume un evento. El error solo se registra.
type Handler func(ctx context.Context, ev Event) error

type subscription struct {
	name    string
	handler Handler
}

type envelope struct {
	ctx context.Context
	ev  Event
}

// Bus canal con buffer consumido por N workers.
type Bus struct {
	log            *logger.Logger
	queue          chan envelope
	workers        int
	handlerTimeout time.Duration

	mu     sync.RWMutex
	subs   map[Kind][]subscription
	closed bool

	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewBus crea el bus. buffer es la capacidad de la cola; workers la cantidad de consumidores.
func NewBus(log *logger.Logger, buffer, workers int) *Bus {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Bus{
		log:            log.Named("events"),
		queue:          make(chan envelope, buffer),
		workers:        workers,
		handlerTimeout: 10 * time.Second,
		subs:           make(map[Kind][]subscription),
	}
}

// Subscribe registra un handler para un tipo de evento. Debe llamarse antes de Start.
func (b *Bus) Subscribe(kind Kind, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], subscription{name: name, handler: h})
}

// Start lanza los workers. Llamadas repetidas no tienen efecto.
func (b *Bus) Start() {
	b.startOnce.Do(func() {
		for i := 0; i < b.workers; i++ {
			b.wg.Add(1)
			go b.work()
		}
	})
}

// Publish encola el evento sin bloquear. El contexto del request se desacopla de su cancelación
// pero conserva sus valores (trazas).
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	select {
	case b.queue <- envelope{ctx: context.WithoutCancel(ctx), ev: ev}:
		return nil
	default:
		return ErrBusFull
	}
}

// Close deja de aceptar eventos y espera a que la cola se drene o venza ctx.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	// Si nunca se arrancó, los eventos pendientes se procesan ahora.
	b.Start()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drenar bus de eventos: %w", ctx.Err())
	}
}

func (b *Bus) work() {
	defer b.wg.Done()
	for env := range b.queue {
		b.dispatch(env)
	}
}

func (b *Bus) dispatch(env envelope) {
	b.mu.RLock()
	subs := b.subs[env.ev.Kind]
	b.mu.RUnlock()
	for _, s := range subs {
		b.invoke(env, s)
	}
}

func (b *Bus) invoke(env envelope, s subscription) {
	ctx, cancel := context.WithTimeout(env.ctx, b.handlerTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("handler", s.name).
				Str("kind", string(env.ev.Kind)).
				Interface("panic", r).
				Msg("panic en handler de evento")
		}
	}()
	if err := s.handler(ctx, env.ev); err != nil {
		b.log.Error().Err(err).
			Str("handler", s.name).
			Str("kind", string(env.ev.Kind)).
			Str("product_id", env.ev.ProductID).
			Str("store_id", env.ev.StoreID).
			Msg("handler de evento falló")
	}
}
