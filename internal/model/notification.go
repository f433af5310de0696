package model

import "time"

// Notification kinds stored in notifications.kind.
const (
	NotifyFriendRequest  = "FRIEND_REQUEST"
	NotifyFriendAccepted = "FRIEND_ACCEPTED"
	NotifyNewMessage     = "NEW_MESSAGE"
)

// Notification is a row in the `notifications` table.  Rows are written by
// the queue consumer when it processes notification events and are read by
// the client's notification list.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id (recipient)
	ActorID   uint64    // notifications.actor_id (who caused it)
	Kind      string    // notifications.kind
	Body      string    // notifications.body (preformatted display text)
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
