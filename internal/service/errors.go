// Package service implements the session lifecycle: credential
// verification, access-token issuance, refresh-token rotation and the
// logout / credential-change side effects.  Handlers call into this
// package and translate its errors to HTTP statuses.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials covers both "no such account" and "wrong
// password".  The two are merged on purpose: callers must not be able to
// probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRefresh covers unknown, expired and revoked refresh tokens
// alike, for the same enumeration-resistance reason.
var ErrInvalidRefresh = errors.New("invalid or expired refresh token")

// ErrEmailTaken is returned by registration when the email already
// belongs to an account (compared case-insensitively).
var ErrEmailTaken = errors.New("email already registered")

// ErrUserNotFound is returned when an authenticated operation references
// a user row that no longer exists.  Rare; usually means the account was
// deleted while an access token was still live.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports malformed registration or password input.  It
// carries one message per violated field so clients can highlight the
// exact inputs to fix; unlike login failures there is no enumeration risk
// here.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
