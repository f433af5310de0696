package model

import "time"

// Message is a direct chat message in the `messages` table.
type Message struct {
	ID         uint64    // messages.id
	SenderID   uint64    // messages.sender_id
	ReceiverID uint64    // messages.receiver_id
	Body       string    // messages.body
	CreatedAt  time.Time // messages.created_at
}
