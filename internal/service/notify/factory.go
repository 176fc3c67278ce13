package notify

import (
	"context"
	"strings"

	"service-booking/internal/domain"
)

type pushFunc func(context.Context, domain.InboxMessage) error

type pushFactory struct {
	byTopic map[domain.Topic]pushFunc
}

func newPushFactory(onOrder, onBid, onDispatch, onKYC pushFunc) *pushFactory {
	return &pushFactory{
		byTopic: map[domain.Topic]pushFunc{
			domain.TopicOrder:    onOrder,
			domain.TopicBid:      onBid,
			domain.TopicDispatch: onDispatch,
			domain.TopicKYC:      onKYC,
		},
	}
}

func (f *pushFactory) get(topic domain.Topic) (pushFunc, bool) {
	topic = domain.Topic(strings.ToUpper(strings.TrimSpace(string(topic))))
	fn, ok := f.byTopic[topic]
	return fn, ok
}
