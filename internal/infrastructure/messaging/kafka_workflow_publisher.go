// Package messaging publica los disparadores de workflow en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stockflow-api/internal/application/workflow"
)

var _ workflow.Sender = (*KafkaWorkflowPublisher)(nil)

// messageWriter subconjunto de *kafka.Writer usado por el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWorkflowPublisher escribe un mensaje por disparador. La clave es el producto para mantener el orden por producto.
type KafkaWorkflowPublisher struct {
	writer       messageWriter
	writeTimeout time.Duration
}

// NewKafkaWorkflowPublisher crea el writer contra los brokers y el tópico dados.
func NewKafkaWorkflowPublisher(brokers []string, topic string) *KafkaWorkflowPublisher {
	return NewKafkaWorkflowPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	})
}

// NewKafkaWorkflowPublisherWithWriter permite inyectar el writer (tests).
func NewKafkaWorkflowPublisherWithWriter(w messageWriter) *KafkaWorkflowPublisher {
	return &KafkaWorkflowPublisher{writer: w, writeTimeout: 5 * time.Second}
}

// Send serializa el disparador y lo escribe con la cabecera event-type.
func (p *KafkaWorkflowPublisher) Send(ctx context.Context, t workflow.Trigger) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("serializar disparador %s: %w", t.Event, err)
	}

	msg := kafka.Message{
		Key:   []byte(t.ProductID),
		Value: payload,
		Time:  t.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(t.Event)},
			{Key: "store-id", Value: []byte(t.StoreID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar disparador %s en kafka: %w", t.Event, err)
	}
	return nil
}

func (p *KafkaWorkflowPublisher) Close() error {
	return p.writer.Close()
}
