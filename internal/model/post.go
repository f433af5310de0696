package model

import "time"

// Post is a feed entry in the `posts` table.  Besides free text it may
// carry structured workout data so clients can render activity cards.
type Post struct {
	ID             uint64    // posts.id
	AuthorID       uint64    // posts.author_id
	Body           string    // posts.body
	Activity       string    // posts.activity (e.g. RUN, LIFT; empty for plain posts)
	DurationMin    uint32    // posts.duration_min
	DistanceMeters uint32    // posts.distance_meters
	CreatedAt      time.Time // posts.created_at
}
