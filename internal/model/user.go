package model

import "time"

// Roles stored in users.role and carried in the access token's "role" claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with the
// public JSON shape (the password hash never crosses that boundary).
//
// Fields:
//
//	ID              – primary key identifier of the user.
//	Name            – display name shown to other members.
//	Email           – unique email address, stored lowercase.
//	PasswordHash    – bcrypt hashed password.
//	Role            – role name (USER or ADMIN), also an access-token claim.
//	BuildingName    – optional name of the member's gym/building.
//	IsBuildingOwner – whether the member owns/manages that building.
//	CreatedAt       – timestamp of creation.
//	UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64    // users.id
	Name            string    // users.name
	Email           string    // users.email
	PasswordHash    string    // users.password_hash
	Role            string    // users.role
	BuildingName    string    // users.building_name
	IsBuildingOwner bool      // users.is_building_owner
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation.  The plain token value is handed to the client exactly once;
// only its SHA-256 hash is stored.
//
// A token is usable iff RevokedAt is null and ExpiresAt is in the future.
// Revocation is one-way: rows are never un-revoked and never deleted in
// normal operation, so spent tokens remain as an audit trail.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
