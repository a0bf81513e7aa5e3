package postgres

import (
	"context"

	"github.com/xela07ax/hr-console/internal/domain"
)

func (r *HRRepo) CreateNotification(ctx context.Context, n *domain.Notification) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, title, content, sender_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		n.ID, n.Title, n.Content, n.SenderID,
	).Scan(&n.CreatedAt)
	return mapErr("create notification", err)
}

func (r *HRRepo) ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, content, sender_id, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr("list notifications", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.SenderID, &n.CreatedAt); err != nil {
			return nil, mapErr("scan notification", err)
		}
		out = append(out, n)
	}
	return out, mapErr("list notifications", rows.Err())
}
