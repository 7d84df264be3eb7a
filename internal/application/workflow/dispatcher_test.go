package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/application/workflow"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// MockTriggerSink simula el motor de reglas.
type MockTriggerSink struct {
	mock.Mock
}

func (m *MockTriggerSink) OnMovementCreated(ctx context.Context, mov entity.Movement) error {
	return m.Called(ctx, mov).Error(0)
}

func (m *MockTriggerSink) OnStockBelowMin(ctx context.Context, p entity.Product, current int) error {
	return m.Called(ctx, p, current).Error(0)
}

func (m *MockTriggerSink) OnStockAboveMax(ctx context.Context, p entity.Product, current int) error {
	return m.Called(ctx, p, current).Error(0)
}

type panicSink struct{ workflow.NopSink }

func (panicSink) OnStockBelowMin(context.Context, entity.Product, int) error { panic("motor caído") }

type senderFunc func(ctx context.Context, t workflow.Trigger) error

func (f senderFunc) Send(ctx context.Context, t workflow.Trigger) error { return f(ctx, t) }

var product = entity.Product{ID: "p1", StoreID: "s1", Name: "Arroz", StockMin: 20, StockMax: 100}

func TestDispatcher_MapeoDeAlertas(t *testing.T) {
	tests := []struct {
		alert  stock.Alert
		method string
	}{
		{stock.AlertLowStock, "OnStockBelowMin"},
		{stock.AlertCriticalStock, "OnStockBelowMin"},
		{stock.AlertOverstock, "OnStockAboveMax"},
	}
	for _, tt := range tests {
		t.Run(string(tt.alert), func(t *testing.T) {
			sink := new(MockTriggerSink)
			sink.On(tt.method, mock.Anything, product, 5).Return(nil).Once()
			workflow.NewDispatcher(sink, logger.Nop()).DispatchAlert(context.Background(), tt.alert, product, 5)
			sink.AssertExpectations(t)
		})
	}
}

func TestDispatcher_RecuperadoYSinAlertaNoDisparan(t *testing.T) {
	sink := new(MockTriggerSink)
	d := workflow.NewDispatcher(sink, logger.Nop())
	d.DispatchAlert(context.Background(), stock.AlertStockRecovered, product, 15)
	d.DispatchAlert(context.Background(), stock.AlertNone, product, 50)
	sink.AssertNotCalled(t, "OnStockBelowMin", mock.Anything, mock.Anything, mock.Anything)
	sink.AssertNotCalled(t, "OnStockAboveMax", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_ErroresYPanicsSeContienen(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromZerolog(zerolog.New(&buf))

	sink := new(MockTriggerSink)
	sink.On("OnMovementCreated", mock.Anything, mock.Anything).Return(errors.New("timeout"))
	d := workflow.NewDispatcher(sink, log)

	assert.NotPanics(t, func() {
		d.MovementCreated(context.Background(), entity.Movement{ID: "m1", ProductID: "p1", StoreID: "s1"})
	})
	assert.Contains(t, buf.String(), "timeout")

	buf.Reset()
	d = workflow.NewDispatcher(panicSink{}, log)
	assert.NotPanics(t, func() {
		d.DispatchAlert(context.Background(), stock.AlertCriticalStock, product, 0)
	})
	assert.Contains(t, buf.String(), "motor caído")
}

func TestDispatcher_HandleMovementCreated(t *testing.T) {
	sink := new(MockTriggerSink)
	mov := entity.Movement{ID: "m1", ProductID: "p1", StoreID: "s1", Type: entity.MovementTypeEntrada, Quantity: 3}
	sink.On("OnMovementCreated", mock.Anything, mov).Return(errors.New("falla")).Once()

	err := workflow.NewDispatcher(sink, logger.Nop()).HandleMovementCreated(context.Background(), events.Event{Movement: mov})
	assert.NoError(t, err, "el error del motor nunca se propaga")
	sink.AssertExpectations(t)
}

func TestMultiSink_TodosRecibenAunqueUnoFalle(t *testing.T) {
	failing := new(MockTriggerSink)
	failing.On("OnStockAboveMax", mock.Anything, product, 120).Return(errors.New("webhook 500"))
	ok := new(MockTriggerSink)
	ok.On("OnStockAboveMax", mock.Anything, product, 120).Return(nil)

	err := workflow.MultiSink{failing, ok}.OnStockAboveMax(context.Background(), product, 120)
	assert.ErrorContains(t, err, "webhook 500")
	ok.AssertExpectations(t)
}

func TestSenderSink_ArmaDisparadores(t *testing.T) {
	var got []workflow.Trigger
	sink := workflow.NewSenderSink(senderFunc(func(_ context.Context, tr workflow.Trigger) error {
		got = append(got, tr)
		return nil
	}))
	ctx := context.Background()

	assert.NoError(t, sink.OnMovementCreated(ctx, entity.Movement{ID: "m1", ProductID: "p1", StoreID: "s1", Type: entity.MovementTypeSaida, Quantity: 2, BalanceAfter: 8}))
	assert.NoError(t, sink.OnStockBelowMin(ctx, product, 4))

	if assert.Len(t, got, 2) {
		assert.Equal(t, workflow.EventMovementCreated, got[0].Event)
		assert.Equal(t, "SAIDA", got[0].Movement.Type)
		assert.Equal(t, 8, got[0].Movement.BalanceAfter)
		assert.Equal(t, workflow.EventStockBelowMin, got[1].Event)
		assert.Equal(t, 4, *got[1].CurrentStock)
		assert.Equal(t, 20, *got[1].StockMin)
	}
}
