package notify

import (
	"context"

	"service-booking/internal/domain"
)

// PublishFunc sends a batch to the broker and returns the ids it acknowledged.
type PublishFunc func(ctx context.Context, msgs []domain.InboxMessage) ([]string, error)

type relayStore interface {
	RelayBatch(ctx context.Context, limit int, publish func(ctx context.Context, msgs []domain.InboxMessage) ([]string, error)) (int, error)
}

type deliveryStore interface {
	MarkDelivered(ctx context.Context, id string) (bool, error)
}

// Pusher hands a notification to the user's device.
type Pusher interface {
	Push(ctx context.Context, n Notification) error
}
