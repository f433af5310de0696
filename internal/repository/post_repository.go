package repository

import (
	"context"
	"database/sql"

	"github.com/aarwitz/fitlink-backend/internal/model"
)

// FeedItem is a post joined with its author's public fields, shaped for
// the feed listing.
type FeedItem struct {
	Post       model.Post
	AuthorName string
}

// PostRepo provides data access to the `posts` table.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

// Create inserts a post and returns its ID.
func (r *PostRepo) Create(ctx context.Context, p model.Post) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (author_id, body, activity, duration_min, distance_meters) VALUES (?,?,?,?,?)",
		p.AuthorID, p.Body, p.Activity, p.DurationMin, p.DistanceMeters)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single post.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,author_id,body,activity,duration_min,distance_meters,created_at FROM posts WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.AuthorID, &p.Body, &p.Activity, &p.DurationMin, &p.DistanceMeters, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Post{}, ErrNotFound
	}
	return p, err
}

// Feed returns the newest posts of the user and their accepted friends,
// newest first, limited by the caller.
func (r *PostRepo) Feed(ctx context.Context, userID uint64, limit int) ([]FeedItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, p.author_id, u.name, p.body, p.activity, p.duration_min, p.distance_meters, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.author_id = ?
		   OR p.author_id IN (
			SELECT CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END
			FROM friendships f
			WHERE f.status = 'ACCEPTED' AND (f.requester_id = ? OR f.addressee_id = ?)
		   )
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?`,
		userID, userID, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FeedItem
	for rows.Next() {
		var it FeedItem
		if err := rows.Scan(&it.Post.ID, &it.Post.AuthorID, &it.AuthorName, &it.Post.Body,
			&it.Post.Activity, &it.Post.DurationMin, &it.Post.DistanceMeters, &it.Post.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByAuthor returns a user's posts, newest first.
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uint64, limit int) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,author_id,body,activity,duration_min,distance_meters,created_at FROM posts WHERE author_id=? ORDER BY created_at DESC, id DESC LIMIT ?",
		authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Body, &p.Activity, &p.DurationMin, &p.DistanceMeters, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Delete removes a post if it belongs to the given author.  Deleting
// someone else's post fails with ErrForbidden.
func (r *PostRepo) Delete(ctx context.Context, id, authorID uint64) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != authorID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	return err
}
