package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aarwitz/fitlink-backend/internal/model"
)

// FriendRepo provides data access to the `friendships` table.  A pair of
// users appears at most once regardless of who initiated the request; the
// unique index on (least_id, greatest_id) enforces that.
type FriendRepo struct{ DB *sql.DB }

func NewFriendRepo(db *sql.DB) *FriendRepo { return &FriendRepo{DB: db} }

// Request creates a PENDING friendship from requester to addressee.
// A duplicate pair in either direction maps to ErrFriendshipExists.
func (r *FriendRepo) Request(ctx context.Context, requesterID, addresseeID uint64) (uint64, error) {
	lo, hi := orderedPair(requesterID, addresseeID)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO friendships (requester_id, addressee_id, least_id, greatest_id, status) VALUES (?,?,?,?, 'PENDING')",
		requesterID, addresseeID, lo, hi)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrFriendshipExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Accept flips a PENDING friendship to ACCEPTED.  Only the addressee may
// accept; the conditional UPDATE makes a second accept a no-op failure.
func (r *FriendRepo) Accept(ctx context.Context, friendshipID, addresseeID uint64) (model.Friendship, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE friendships SET status='ACCEPTED', updated_at=UTC_TIMESTAMP() WHERE id=? AND addressee_id=? AND status='PENDING'",
		friendshipID, addresseeID)
	if err != nil {
		return model.Friendship{}, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return model.Friendship{}, ErrNotFound
	}
	return r.getByID(ctx, friendshipID)
}

// Remove deletes a friendship (pending or accepted) that involves the
// given user.  Users can only sever links they are part of.
func (r *FriendRepo) Remove(ctx context.Context, friendshipID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM friendships WHERE id=? AND (requester_id=? OR addressee_id=?)",
		friendshipID, userID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FriendSummary is a friendship joined with the counterpart's public name.
type FriendSummary struct {
	Friendship model.Friendship
	FriendID   uint64
	FriendName string
}

// ListForUser returns the user's friendships, optionally filtered by
// status (empty string means all).
func (r *FriendRepo) ListForUser(ctx context.Context, userID uint64, status string) ([]FriendSummary, error) {
	q := `
		SELECT f.id, f.requester_id, f.addressee_id, f.status, f.created_at, f.updated_at, u.id, u.name
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END
		WHERE (f.requester_id = ? OR f.addressee_id = ?)`
	args := []interface{}{userID, userID, userID}
	if status != "" {
		q += " AND f.status = ?"
		args = append(args, status)
	}
	q += " ORDER BY f.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FriendSummary
	for rows.Next() {
		var s FriendSummary
		if err := rows.Scan(&s.Friendship.ID, &s.Friendship.RequesterID, &s.Friendship.AddresseeID,
			&s.Friendship.Status, &s.Friendship.CreatedAt, &s.Friendship.UpdatedAt, &s.FriendID, &s.FriendName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AreFriends reports whether the two users share an ACCEPTED friendship.
// Chat delivery checks this before inserting a message.
func (r *FriendRepo) AreFriends(ctx context.Context, a, b uint64) (bool, error) {
	lo, hi := orderedPair(a, b)
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friendships WHERE least_id=? AND greatest_id=? AND status='ACCEPTED'",
		lo, hi).Scan(&n)
	return n > 0, err
}

func (r *FriendRepo) getByID(ctx context.Context, id uint64) (model.Friendship, error) {
	var f model.Friendship
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,requester_id,addressee_id,status,created_at,updated_at FROM friendships WHERE id=? LIMIT 1",
		id).Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Friendship{}, ErrNotFound
	}
	return f, err
}

// orderedPair returns the two ids sorted ascending, the canonical form
// used by the pair-uniqueness index.
func orderedPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}
