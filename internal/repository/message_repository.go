package repository

import (
	"context"
	"database/sql"

	"github.com/aarwitz/fitlink-backend/internal/model"
)

// MessageRepo provides data access to the `messages` table.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// Create inserts a message and returns its ID.
func (r *MessageRepo) Create(ctx context.Context, m model.Message) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (sender_id, receiver_id, body) VALUES (?,?,?)",
		m.SenderID, m.ReceiverID, m.Body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Conversation returns the messages exchanged between two users, oldest
// first, limited by the caller.
func (r *MessageRepo) Conversation(ctx context.Context, a, b uint64, limit int) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, body, created_at
		FROM messages
		WHERE (sender_id=? AND receiver_id=?) OR (sender_id=? AND receiver_id=?)
		ORDER BY created_at ASC, id ASC
		LIMIT ?`,
		a, b, b, a, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
