package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"service-booking/internal/domain"
	"service-booking/internal/logx"
)

type fakeProducer struct {
	sent   []*sarama.ProducerMessage
	failAt int
	closed bool
}

func (f *fakeProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	if f.failAt > 0 && len(f.sent)+1 == f.failAt {
		return 0, 0, errors.New("broker unavailable")
	}
	f.sent = append(f.sent, msg)
	return 0, int64(len(f.sent)), nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestNewProducer_SkipsWhenNoKafkaConfig(t *testing.T) {
	t.Parallel()

	p, err := NewProducer(logx.Nop(), nil, "topic")
	require.NoError(t, err)
	require.Nil(t, p)

	p, err = NewProducer(logx.Nop(), []string{"b:9092"}, " ")
	require.NoError(t, err)
	require.Nil(t, p)
	require.NoError(t, p.Close())
}

func TestPublish_KeysByUserAndEncodesDTO(t *testing.T) {
	t.Parallel()

	fp := &fakeProducer{}
	p := &Producer{producer: fp, topic: "booking.notifications", logger: logx.Nop()}
	orderID := "o1"

	ids, err := p.Publish(context.Background(), []domain.InboxMessage{
		{ID: "n1", UserID: "u1", Message: "a", Topic: domain.TopicBid, OrderID: &orderID},
		{ID: "n2", UserID: "u2", Message: "b", Topic: domain.TopicKYC},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"n1", "n2"}, ids)
	require.Len(t, fp.sent, 2)

	msg := fp.sent[0]
	require.Equal(t, "booking.notifications", msg.Topic)
	key, err := msg.Key.Encode()
	require.NoError(t, err)
	require.Equal(t, "u1", string(key))

	raw, err := msg.Value.Encode()
	require.NoError(t, err)
	var dto NotificationDTO
	require.NoError(t, json.Unmarshal(raw, &dto))
	require.Equal(t, "BID", dto.Topic)
	require.Equal(t, "o1", *dto.OrderID)
}

func TestPublish_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	fp := &fakeProducer{failAt: 2}
	p := &Producer{producer: fp, topic: "t", logger: logx.Nop()}

	ids, err := p.Publish(context.Background(), []domain.InboxMessage{
		{ID: "n1", UserID: "u1"}, {ID: "n2", UserID: "u1"}, {ID: "n3", UserID: "u1"},
	})
	require.Error(t, err)
	require.Equal(t, []string{"n1"}, ids)

	require.NoError(t, p.Close())
	require.True(t, fp.closed)
}

func TestNotificationDTO_RoundTripTrims(t *testing.T) {
	t.Parallel()

	blank := "  "
	m := ToDomain(NotificationDTO{ID: " n1 ", UserID: " u1 ", Topic: " order ", OrderID: &blank})
	require.Equal(t, "n1", m.ID)
	require.Equal(t, "u1", m.UserID)
	require.Equal(t, domain.TopicOrder, m.Topic)
	require.Nil(t, m.OrderID)
}
