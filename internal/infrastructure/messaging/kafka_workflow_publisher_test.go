package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/workflow"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/messaging"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("sin deadline")
	}
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaWorkflowPublisher_Send(t *testing.T) {
	w := &fakeWriter{}
	pub := messaging.NewKafkaWorkflowPublisherWithWriter(w)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := entity.Product{ID: "p1", StoreID: "s1", Name: "Arroz", StockMin: 20, StockMax: 100}

	require.NoError(t, pub.Send(context.Background(), workflow.StockTrigger(workflow.EventStockBelowMin, p, 4, at)))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "p1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, "STOCK_BELOW_MIN", string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "s1", body["store_id"])
	assert.EqualValues(t, 4, body["current_stock"])

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestKafkaWorkflowPublisher_ErrorDelBroker(t *testing.T) {
	pub := messaging.NewKafkaWorkflowPublisherWithWriter(&fakeWriter{err: errors.New("broker caído")})
	err := pub.Send(context.Background(), workflow.MovementTrigger(entity.Movement{ID: "m1", ProductID: "p1"}, time.Now()))
	assert.ErrorContains(t, err, "broker caído")
}
