// Package webhook envía los disparadores de workflow a un endpoint HTTP del motor de reglas.
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/stockflow-api/internal/application/workflow"
)

var _ workflow.Sender = (*WorkflowClient)(nil)

// WorkflowClient cliente resty del motor de reglas.
type WorkflowClient struct {
	client *resty.Client
	url    string
}

// NewWorkflowClient crea el cliente. timeout <= 0 usa 5 segundos.
func NewWorkflowClient(url string, timeout time.Duration) *WorkflowClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &WorkflowClient{client: c, url: url}
}

// Send hace POST del disparador; cualquier status >= 400 es error.
func (c *WorkflowClient) Send(ctx context.Context, t workflow.Trigger) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", string(t.Event)).
		SetBody(t).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", t.Event, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: status %d", t.Event, resp.StatusCode())
	}
	return nil
}
