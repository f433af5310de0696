package repository

import (
	"context"
	"database/sql"

	"github.com/aarwitz/fitlink-backend/internal/model"
)

// NotificationRepo provides data access to the `notifications` table.
// Rows are written by the queue consumer and read by the client's
// notification list.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a notification row.
func (r *NotificationRepo) Create(ctx context.Context, n model.Notification) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, actor_id, kind, body) VALUES (?,?,?,?)",
		n.UserID, n.ActorID, n.Kind, n.Body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,actor_id,kind,body,is_read,created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ActorID, &n.Kind, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.  Only the recipient may do so.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?",
		id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
