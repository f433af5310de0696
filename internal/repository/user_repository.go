package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aarwitz/fitlink-backend/internal/model"
)

// UserRepo provides data access to the `users` table.  Password hashing
// is the session service's job; this layer only moves rows.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  Emails are normalized to
// lowercase before insert; the unique index on users.email is the real
// uniqueness guarantee, and a duplicate-key failure (MySQL error 1062)
// maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash, role, buildingName string, isBuildingOwner bool) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, building_name, is_building_owner) VALUES (?,?,?,?,?,?)",
		name, email, passwordHash, role, buildingName, isBuildingOwner)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,role,building_name,is_building_owner,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.BuildingName, &u.IsBuildingOwner, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,role,building_name,is_building_owner,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.BuildingName, &u.IsBuildingOwner, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
		passwordHash, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile updates the mutable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, buildingName string, isBuildingOwner bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, building_name=?, is_building_owner=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
		name, buildingName, isBuildingOwner, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user row.  Dependent social rows go with it via
// ON DELETE CASCADE foreign keys; refresh tokens are revoked beforehand
// by the session service so no usable token ever outlives the account.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
