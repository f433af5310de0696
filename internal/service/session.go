package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/aarwitz/fitlink-backend/internal/config"
	"github.com/aarwitz/fitlink-backend/internal/model"
	"github.com/aarwitz/fitlink-backend/internal/repository"
	"github.com/aarwitz/fitlink-backend/internal/utils"
)

// minPasswordLen is the floor enforced on registration and password change.
const minPasswordLen = 8

// dummyHash is a bcrypt hash of a random throwaway string.  Login burns a
// comparison against it when the email is unknown so that unknown-email
// and wrong-password failures take comparable time.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// UserStore is the slice of the user repository the session service
// needs.  Satisfied by *repository.UserRepo; faked in tests.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role, buildingName string, isBuildingOwner bool) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore is the slice of the refresh-token repository the session
// service needs.  Satisfied by *repository.TokenRepo; faked in tests.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	Consume(ctx context.Context, tokenHash string) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// Session is what a successful register/login/refresh hands back: a signed
// access token, the raw refresh token (the only time the plaintext
// exists), the access lifetime in seconds and the public user record.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         model.User
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	BuildingName    string
	IsBuildingOwner bool
}

// SessionService orchestrates the session lifecycle over a user store and
// a refresh-token store.  Refresh tokens are single-use: a successful
// refresh revokes the presented token and mints a new pair (rotation).
type SessionService struct {
	users  UserStore
	tokens TokenStore

	secret         string
	accessTTLMin   int
	refreshTTLDays int
	bcryptCost     int

	// revokeOnPasswordChange decides whether changing the password also
	// kills every outstanding session.  Off by default to match the
	// mobile client's expectation that other devices stay logged in.
	revokeOnPasswordChange bool
}

// NewSessionService wires a SessionService from config and stores.
func NewSessionService(cfg config.Config, users UserStore, tokens TokenStore) *SessionService {
	return &SessionService{
		users:                  users,
		tokens:                 tokens,
		secret:                 cfg.JWTSecret,
		accessTTLMin:           cfg.AccessTTLMin,
		refreshTTLDays:         cfg.RefreshTTLDays,
		bcryptCost:             cfg.BcryptCost,
		revokeOnPasswordChange: cfg.RevokeSessionsOnPasswordChange,
	}
}

// Register validates the form, creates the user and immediately issues a
// first session.  Validation failures return *ValidationError with one
// message per bad field; a duplicate email returns ErrEmailTaken.
//
// User creation and first-session issuance are not one transaction: if
// issuance fails after the row is inserted the caller gets an error and
// simply logs in instead, so the worst case is an account without a
// session, never a session without an account.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		fields["email"] = "email is not well-formed"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}
	if len(fields) > 0 {
		return Session{}, &ValidationError{Fields: fields}
	}

	// Best-effort pre-check; the unique index on users.email is the real
	// guard against a racing duplicate insert.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Session{}, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("register: hash password: %w", err)
	}

	id, err := s.users.Create(ctx, strings.TrimSpace(in.Name), email, hash, model.RoleUser, in.BuildingName, in.IsBuildingOwner)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("register: create user: %w", err)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return Session{}, fmt.Errorf("register: reload user: %w", err)
	}
	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a session.  Unknown email and
// wrong password both come back as ErrInvalidCredentials with no way to
// tell them apart.
func (s *SessionService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword(dummyHash, password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("login: lookup email: %w", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user)
}

// Refresh exchanges a refresh token for a new access+refresh pair.  The
// presented token is spent atomically before anything else happens, so it
// can succeed at most once ever; the replacement token is always a new
// value.
func (s *SessionService) Refresh(ctx context.Context, rawToken string) (Session, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(rawToken))
	userID, err := s.tokens.Consume(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenSpent) {
			// A known token presented after it was spent is the signature
			// of a replayed (possibly leaked) refresh token.
			log.Printf("refresh: replay of spent token (hash %s…)", hash[:8])
			return Session{}, ErrInvalidRefresh
		}
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidRefresh
		}
		return Session{}, fmt.Errorf("refresh: consume token: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidRefresh
		}
		return Session{}, fmt.Errorf("refresh: load user: %w", err)
	}
	return s.issueSession(ctx, user)
}

// Logout revokes the presented refresh token.  It is best-effort and
// idempotent: an unknown or already-revoked token still counts as a
// successful logout, since the client's goal is already met.
func (s *SessionService) Logout(ctx context.Context, rawToken string) error {
	hash := utils.HashRefreshRaw(strings.TrimSpace(rawToken))
	if err := s.tokens.Revoke(ctx, hash); err != nil {
		return fmt.Errorf("logout: revoke token: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password and stores a hash of the
// new one.  Outstanding refresh tokens survive unless the
// revoke-on-password-change policy is switched on.
func (s *SessionService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("change password: load user: %w", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordLen {
		return &ValidationError{Fields: map[string]string{
			"newPassword": fmt.Sprintf("password must be at least %d characters", minPasswordLen),
		}}
	}
	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: store: %w", err)
	}
	if s.revokeOnPasswordChange {
		if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("change password: revoke sessions: %w", err)
		}
	}
	return nil
}

// DeleteAccount revokes every refresh token, removes the token rows, then
// removes the user row.  Revoke-first ordering means a failure between
// the steps can never leave a usable token pointing at a deleted account,
// and deleting the token rows before the user keeps the users DELETE from
// ever colliding with a child-row constraint.
func (s *SessionService) DeleteAccount(ctx context.Context, userID uint64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete account: load user: %w", err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: revoke tokens: %w", err)
	}
	if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: delete tokens: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: delete user: %w", err)
	}
	return nil
}

// issueSession mints the access token, persists a new refresh token and
// assembles the session payload.  Shared by register, login and refresh.
func (s *SessionService) issueSession(ctx context.Context, user model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.secret, user.ID, user.Role, s.accessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: sign access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: generate refresh token: %w", err)
	}
	if err := s.tokens.Store(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("issue session: store refresh token: %w", err)
	}
	return Session{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		ExpiresIn:    s.accessTTLMin * 60,
		User:         user,
	}, nil
}
