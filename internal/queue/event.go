// Package queue defines message payloads exchanged over the message broker
// plus the publisher and consumer that move them.
package queue

// notificationQueueName is the durable queue notification events travel on.
const notificationQueueName = "notification.events"

// NotificationEvent is published whenever something happens that the
// recipient should hear about: an incoming friend request, an accepted
// request, a new chat message.  It carries enough for the consumer to
// write a notification row without querying back into the social tables.
type NotificationEvent struct {
	UserID     uint64 `json:"user_id"`    // recipient
	ActorID    uint64 `json:"actor_id"`   // who caused the event
	ActorName  string `json:"actor_name"` // display name for the notification text
	Kind       string `json:"kind"`       // FRIEND_REQUEST | FRIEND_ACCEPTED | NEW_MESSAGE
	Body       string `json:"body"`       // preformatted display text
	OccurredAt string `json:"occurred_at"`
}
