package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia de notificaciones.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	// MarkRead marca la notificación del usuario como leída. Devuelve domain.ErrNotFound si no es suya o no existe.
	MarkRead(ctx context.Context, userID, id string) error
}
