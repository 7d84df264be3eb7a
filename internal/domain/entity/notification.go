package entity

import (
	"encoding/json"
	"time"
)

// Tipos de notificación.
const (
	NotificationTypeInfo       = "INFO"
	NotificationTypeSuccess    = "SUCCESS"
	NotificationTypeWarning    = "WARNING"
	NotificationTypeError      = "ERROR"
	NotificationTypeStockAlert = "STOCK_ALERT"
)

// Prioridades de notificación.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Notification copia independiente por destinatario; cada una tiene su propio estado de lectura.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      string
	Priority  string
	Data      json.RawMessage
	ActionURL string
	ExpiresAt *time.Time
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
