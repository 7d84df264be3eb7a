package notification

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// UseCase bandeja de notificaciones del usuario autenticado.
type UseCase struct {
	repo repository.NotificationRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.NotificationRepository) *UseCase {
	return &UseCase{repo: repo}
}

// ListForUser lista las notificaciones vigentes del usuario, más recientes primero.
func (uc *UseCase) ListForUser(ctx context.Context, userID string, unreadOnly bool, page dto.PageRequest) (*dto.NotificationListResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	page.DefaultPage()
	list, err := uc.repo.ListByUser(ctx, userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, toResponse(n))
	}
	return &dto.NotificationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// MarkAsRead marca como leída una notificación propia. Solo afecta la copia de ese usuario.
func (uc *UseCase) MarkAsRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.repo.MarkRead(ctx, userID, id)
}

func toResponse(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Priority:  n.Priority,
		Data:      n.Data,
		ActionURL: n.ActionURL,
		ExpiresAt: n.ExpiresAt,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
