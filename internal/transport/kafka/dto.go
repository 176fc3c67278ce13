package kafka

import (
	"strings"
	"time"

	"service-booking/internal/domain"
)

// NotificationDTO is the wire form of an inbox message on the notifications topic
type NotificationDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Topic     string    `json:"topic"`
	OrderID   *string   `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromDomain converts an inbox message to its NotificationDTO
func FromDomain(m domain.InboxMessage) NotificationDTO {
	return NotificationDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Message:   m.Message,
		Topic:     string(m.Topic),
		OrderID:   m.OrderID,
		CreatedAt: m.CreatedAt,
	}
}

// ToDomain converts NotificationDTO to domain.InboxMessage
func ToDomain(dto NotificationDTO) domain.InboxMessage {
	m := domain.InboxMessage{
		ID:        strings.TrimSpace(dto.ID),
		UserID:    strings.TrimSpace(dto.UserID),
		Message:   dto.Message,
		Topic:     domain.Topic(strings.ToUpper(strings.TrimSpace(dto.Topic))),
		CreatedAt: dto.CreatedAt,
	}
	if dto.OrderID != nil {
		if id := strings.TrimSpace(*dto.OrderID); id != "" {
			m.OrderID = &id
		}
	}
	return m
}
