package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

type recorder struct {
	mu   sync.Mutex
	seen []events.Event
}

func (r *recorder) handle(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ev)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestBus_EntregaPorTipo(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 8, 2)
	created, changed := &recorder{}, &recorder{}
	bus.Subscribe(events.KindMovementCreated, "created", created.handle)
	bus.Subscribe(events.KindStockChanged, "changed", changed.handle)
	bus.Start()

	require.NoError(t, bus.Publish(context.Background(), events.Event{Kind: events.KindMovementCreated}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{Kind: events.KindStockChanged}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{Kind: events.KindStockChanged}))
	require.NoError(t, bus.Close(context.Background()))

	assert.Equal(t, 1, created.count())
	assert.Equal(t, 2, changed.count())
}

func TestBus_PanicYErrorNoDetienenWorkers(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 8, 1)
	rec := &recorder{}
	bus.Subscribe(events.KindStockChanged, "panic", func(context.Context, events.Event) error { panic("boom") })
	bus.Subscribe(events.KindStockChanged, "error", func(context.Context, events.Event) error { return errors.New("falla") })
	bus.Subscribe(events.KindStockChanged, "ok", rec.handle)
	bus.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), events.Event{Kind: events.KindStockChanged}))
	}
	require.NoError(t, bus.Close(context.Background()))
	assert.Equal(t, 3, rec.count())
}

func TestBus_ContextoCanceladoDelRequestNoAfectaHandler(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 1, 1)
	var gotErr error
	done := make(chan struct{})
	bus.Subscribe(events.KindStockChanged, "ctx", func(ctx context.Context, _ events.Event) error {
		gotErr = ctx.Err()
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, events.Event{Kind: events.KindStockChanged}))
	cancel()
	bus.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el handler no fue invocado")
	}
	assert.NoError(t, gotErr)
	require.NoError(t, bus.Close(context.Background()))
}

func TestBus_LlenoYCerrado(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 1, 1)
	require.NoError(t, bus.Publish(context.Background(), events.Event{Kind: events.KindStockChanged}))
	assert.ErrorIs(t, bus.Publish(context.Background(), events.Event{Kind: events.KindStockChanged}), events.ErrBusFull)

	require.NoError(t, bus.Close(context.Background()))
	assert.ErrorIs(t, bus.Publish(context.Background(), events.Event{Kind: events.KindStockChanged}), events.ErrBusClosed)
}

func TestEvent_Delta(t *testing.T) {
	ev := events.Event{PreviousStock: 15, CurrentStock: 5}
	assert.Equal(t, -10, ev.Delta())
}
