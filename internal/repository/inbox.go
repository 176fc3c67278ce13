package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
)

// InboxRepo relays inbox rows written by the booking workflow.
type InboxRepo struct{ db *pgxpool.Pool }

// NewInboxRepo creates a new InboxRepo.
func NewInboxRepo(db *pgxpool.Pool) *InboxRepo { return &InboxRepo{db: db} }

const inboxColumns = `id, user_id, message, topic, order_id, created_at, published_at, delivered_at`

func scanInbox(row pgx.Row) (*domain.InboxMessage, error) {
	var (
		m     domain.InboxMessage
		topic string
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Message, &topic, &m.OrderID, &m.CreatedAt, &m.PublishedAt, &m.DeliveredAt); err != nil {
		return nil, err
	}
	m.Topic = domain.Topic(topic)
	return &m, nil
}

// RelayBatch locks up to limit unpublished rows, hands them to publish and
// marks the ids it returns as published, all in one transaction. Rows locked
// by a concurrent relay are skipped.
func (r *InboxRepo) RelayBatch(ctx context.Context, limit int, publish func(ctx context.Context, msgs []domain.InboxMessage) ([]string, error)) (int, error) {
	var (
		n      int
		pubErr error
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+inboxColumns+` FROM inbox
			WHERE published_at IS NULL
			ORDER BY created_at, id
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, limit)
		if err != nil {
			return fmt.Errorf("select unpublished inbox: %w", err)
		}
		msgs, err := collect(rows, scanInbox)
		if err != nil {
			return fmt.Errorf("select unpublished inbox: %w", err)
		}
		if len(msgs) == 0 {
			return nil
		}

		sent, err := publish(ctx, msgs)
		pubErr = err
		if len(sent) == 0 {
			return err
		}
		// rows published before a failure stay marked
		if _, err := tx.Exec(ctx, `UPDATE inbox SET published_at = now() WHERE id = ANY($1)`, sent); err != nil {
			return fmt.Errorf("mark inbox published: %w", err)
		}
		n = len(sent)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, pubErr
}

// MarkDelivered records that a message reached its recipient. It reports false
// when the row is unknown or was already delivered.
func (r *InboxRepo) MarkDelivered(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `UPDATE inbox SET delivered_at = now() WHERE id = $1 AND delivered_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("mark inbox %q delivered: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

func insertInbox(ctx context.Context, q querier, msgs []domain.InboxMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = cuid.New()
		}
		m := msgs[i]
		batch.Queue(`INSERT INTO inbox (id, user_id, message, topic, order_id) VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.UserID, m.Message, string(m.Topic), m.OrderID)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range msgs {
		if _, err := br.Exec(); err != nil {
			return writeErr("insert inbox", err)
		}
	}
	return nil
}
