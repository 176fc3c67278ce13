package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"service-booking/internal/domain"
	testlog "service-booking/internal/testutil"
)

type fakeSession struct {
	ctx context.Context

	mu     sync.Mutex
	marked int
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(*sarama.ConsumerMessage, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked++
}

func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "" }
func (s *fakeSession) GenerationID() int32                      { return 0 }

func (s *fakeSession) MarkedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c fakeClaim) Topic() string              { return "t" }
func (c fakeClaim) Partition() int32           { return 0 }
func (c fakeClaim) InitialOffset() int64       { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.ch
}

func claimOf(values ...[]byte) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for _, v := range values {
		ch <- &sarama.ConsumerMessage{Value: v}
	}
	close(ch)
	return fakeClaim{ch: ch}
}

func encode(t *testing.T, dto NotificationDTO) []byte {
	t.Helper()
	b, err := json.Marshal(dto)
	require.NoError(t, err)
	return b
}

func TestConsumeClaim_BadJSON_Skips(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, domain.InboxMessage) error {
			t.Fatal("handler must not be called")
			return nil
		},
	}
	h := &groupHandler{c: c}
	sess := &fakeSession{ctx: context.Background()}

	err := h.ConsumeClaim(sess, claimOf([]byte("not-json")))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())

	_, ok := rec.Find("kafka bad json")
	require.True(t, ok)
}

func TestConsumeClaim_EmptyID_Skips(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	calls := 0
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, domain.InboxMessage) error {
			calls++
			return nil
		},
	}
	h := &groupHandler{c: c}
	sess := &fakeSession{ctx: context.Background()}

	err := h.ConsumeClaim(sess, claimOf(encode(t, NotificationDTO{ID: "  ", UserID: "u1", Topic: "BID"})))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.Equal(t, 0, calls)

	_, ok := rec.Find("kafka empty notification id")
	require.True(t, ok)
}

func TestConsumeClaim_PermanentError_SkipsButMarks(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, domain.InboxMessage) error {
			return Permanent(errors.New("unknown topic"))
		},
	}
	h := &groupHandler{c: c}
	sess := &fakeSession{ctx: context.Background()}

	err := h.ConsumeClaim(sess, claimOf(encode(t, NotificationDTO{ID: "n1", UserID: "u1", Topic: "X"})))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())

	_, ok := rec.Find("kafka handle failed, skipping message")
	require.True(t, ok)
}

func TestConsumeClaim_TransientError_StopsWithoutMarking(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	sentinel := errors.New("db down")
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, domain.InboxMessage) error {
			return sentinel
		},
	}
	h := &groupHandler{c: c}
	sess := &fakeSession{ctx: context.Background()}

	err := h.ConsumeClaim(sess, claimOf(
		encode(t, NotificationDTO{ID: "n1", UserID: "u1", Topic: "BID"}),
		encode(t, NotificationDTO{ID: "n2", UserID: "u1", Topic: "BID"}),
	))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 0, sess.MarkedCount())

	e, ok := rec.Find("kafka handle failed, retrying")
	require.True(t, ok)
	require.Equal(t, "error", e.Level)
}

func TestConsumeClaim_Success_Marks(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	orderID := "o1"
	var got []domain.InboxMessage
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(_ context.Context, m domain.InboxMessage) error {
			got = append(got, m)
			return nil
		},
	}
	h := &groupHandler{c: c}
	sess := &fakeSession{ctx: context.Background()}

	err := h.ConsumeClaim(sess, claimOf(encode(t, NotificationDTO{
		ID: "n1", UserID: "u1", Message: "hi", Topic: " bid ", OrderID: &orderID, CreatedAt: time.Now().UTC(),
	})))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.Len(t, got, 1)
	require.Equal(t, domain.TopicBid, got[0].Topic)
	require.Equal(t, "o1", *got[0].OrderID)
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	require.NoError(t, Permanent(nil))
	require.False(t, IsPermanent(errors.New("plain")))

	base := errors.New("unknown topic")
	err := fmt.Errorf("handle: %w", Permanent(base))
	require.True(t, IsPermanent(err))
	require.ErrorIs(t, err, base)
	require.Contains(t, err.Error(), "unknown topic")
}
