package dto

import (
	"encoding/json"
	"time"
)

// NotificationResponse notificación de la bandeja del usuario.
type NotificationResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	Priority  string          `json:"priority"`
	Data      json.RawMessage `json:"data,omitempty"`
	ActionURL string          `json:"action_url,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationListResponse lista paginada de notificaciones.
type NotificationListResponse struct {
	Items []NotificationResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
