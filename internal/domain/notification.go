package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationQuoteResponseReceived NotificationType = "QUOTE_RESPONSE_RECEIVED"
	NotificationQuoteAccepted         NotificationType = "QUOTE_ACCEPTED"
	NotificationQuoteRejected         NotificationType = "QUOTE_REJECTED"
	NotificationQuoteExpiring         NotificationType = "QUOTE_EXPIRING"
	NotificationJoinRequested         NotificationType = "JOIN_REQUESTED"
	NotificationJoinReminder          NotificationType = "JOIN_REQUEST_REMINDER"
	NotificationJoinApproved          NotificationType = "JOIN_APPROVED"
	NotificationJoinRejected          NotificationType = "JOIN_REJECTED"
)

type Notification struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user"`
	Type       NotificationType  `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"isRead"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}
