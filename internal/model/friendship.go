package model

import "time"

// Friendship statuses stored in friendships.status.
const (
	FriendshipPending  = "PENDING"
	FriendshipAccepted = "ACCEPTED"
)

// Friendship links two users in the `friendships` table.  RequesterID sent
// the request; AddresseeID received it.  A pair appears at most once
// regardless of direction (enforced by a unique index on the ordered pair).
type Friendship struct {
	ID          uint64    // friendships.id
	RequesterID uint64    // friendships.requester_id
	AddresseeID uint64    // friendships.addressee_id
	Status      string    // friendships.status (PENDING or ACCEPTED)
	CreatedAt   time.Time // friendships.created_at
	UpdatedAt   time.Time // friendships.updated_at
}
