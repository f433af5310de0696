// Package repository defines error values that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// session service and the handlers to distinguish between failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  The service
// layer decides how much of that fact may leak to the client.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by user creation when the normalized email
// already belongs to another account.  Handlers translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenSpent is returned when a refresh token exists but is no longer
// usable: it was already revoked or has expired.  The two causes are
// deliberately merged so callers cannot probe which one applied.
var ErrTokenSpent = errors.New("refresh token expired or revoked")

// ErrFriendshipExists is returned when a friend request targets a pair of
// users that already has a pending or accepted friendship, in either
// direction.  Handlers translate this into an HTTP 409 response.
var ErrFriendshipExists = errors.New("friendship already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")
