package repository

import (
	"context"
	"fmt"

	"service-booking/internal/domain"
)

// InboxOf returns the messages addressed to userID, newest first.
func InboxOf(ctx context.Context, r *InboxRepo, userID string) ([]domain.InboxMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+inboxColumns+` FROM inbox
		WHERE user_id = $1
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list inbox of %q: %w", userID, err)
	}
	return collect(rows, scanInbox)
}
