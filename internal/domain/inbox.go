package domain

import "time"

// Topic tags an inbox message.
type Topic string

// List of inbox topics
const (
	TopicOrder    Topic = "ORDER"
	TopicBid      Topic = "BID"
	TopicDispatch Topic = "DISPATCH"
	TopicKYC      Topic = "KYC"
)

// InboxMessage is a notification addressed to a user. It is written in the
// same transaction as the change it describes and relayed asynchronously.
type InboxMessage struct {
	ID          string
	UserID      string
	Message     string
	Topic       Topic
	OrderID     *string
	CreatedAt   time.Time
	PublishedAt *time.Time
	DeliveredAt *time.Time
}
