package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/aarwitz/fitlink-backend/internal/config"
	"github.com/aarwitz/fitlink-backend/internal/model"
	"github.com/aarwitz/fitlink-backend/internal/repository"
	"github.com/aarwitz/fitlink-backend/internal/service"
)

// ----- in-memory stores backing the session service -----

type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, name, email, passwordHash, role, buildingName string, isBuildingOwner bool) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.byID {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	m.nextID++
	m.byID[m.nextID] = model.User{
		ID: m.nextID, Name: name, Email: email, PasswordHash: passwordHash,
		Role: role, BuildingName: buildingName, IsBuildingOwner: isBuildingOwner,
	}
	return m.nextID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	m.byID[id] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memTokenRow struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type memTokens struct {
	mu   sync.Mutex
	rows map[string]*memTokenRow
}

func newMemTokens() *memTokens { return &memTokens{rows: map[string]*memTokenRow{}} }

func (m *memTokens) Store(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tokenHash] = &memTokenRow{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *memTokens) Consume(_ context.Context, tokenHash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[tokenHash]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if row.revoked || !row.expiresAt.After(time.Now().UTC()) {
		return 0, repository.ErrTokenSpent
	}
	row.revoked = true
	return row.userID, nil
}

func (m *memTokens) Revoke(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[tokenHash]; ok {
		row.revoked = true
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.userID == userID {
			row.revoked = true
		}
	}
	return nil
}

func (m *memTokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, row := range m.rows {
		if row.userID == userID {
			delete(m.rows, hash)
		}
	}
	return nil
}

// ----- harness -----

func newAuthHandler() *AuthHandler {
	cfg := config.Config{
		JWTSecret:      "handler-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
	return NewAuthHandler(service.NewSessionService(cfg, newMemUsers(), newMemTokens()))
}

func doJSON(t *testing.T, fn echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, fn(c))
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const registerBody = `{"name":"Ann","email":"ann@x.com","password":"password1","buildingName":"North Tower","isBuildingOwner":true}`

// ----- register -----

func TestRegisterEndpoint_Created(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	rec := doJSON(t, h.Register, registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	out := decodeSession(t, rec)
	require.NotEmpty(t, out["accessToken"])
	require.NotEmpty(t, out["refreshToken"])
	require.EqualValues(t, 900, out["expiresIn"])

	user, ok := out["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Ann", user["name"])
	require.Equal(t, "ann@x.com", user["email"])
	require.Equal(t, "USER", user["role"])
	require.Equal(t, "North Tower", user["buildingName"])
	require.Equal(t, true, user["isBuildingOwner"])
	require.NotContains(t, user, "passwordHash")
}

func TestRegisterEndpoint_ValidationFields(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	rec := doJSON(t, h.Register, `{"name":"","email":"nope","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	out := decodeSession(t, rec)
	fields, ok := out["fields"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")
}

func TestRegisterEndpoint_DuplicateEmailConflict(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	require.Equal(t, http.StatusCreated, doJSON(t, h.Register, registerBody).Code)
	rec := doJSON(t, h.Register, `{"name":"Bob","email":"ANN@x.com","password":"password2"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

// ----- login -----

func TestLoginEndpoint_OK(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()
	doJSON(t, h.Register, registerBody)

	rec := doJSON(t, h.Login, `{"email":"ann@x.com","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeSession(t, rec)
	require.NotEmpty(t, out["accessToken"])
	require.NotEmpty(t, out["refreshToken"])
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()
	doJSON(t, h.Register, registerBody)

	rec := doJSON(t, h.Login, `{"email":"ann@x.com","password":"wrongpass"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid credentials", decodeSession(t, rec)["error"])
}

func TestLoginEndpoint_UnknownEmailSameBody(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()
	doJSON(t, h.Register, registerBody)

	unknown := doJSON(t, h.Login, `{"email":"nobody@x.com","password":"password1"}`)
	wrong := doJSON(t, h.Login, `{"email":"ann@x.com","password":"wrongpass"}`)
	// Same status and same body either way: no account enumeration.
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, wrong.Code, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	rec := doJSON(t, h.Login, `{"email":"","password":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// ----- refresh -----

func TestRefreshEndpoint_RotatesAndSpends(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	reg := decodeSession(t, doJSON(t, h.Register, registerBody))
	refresh := reg["refreshToken"].(string)

	rec := doJSON(t, h.Refresh, `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeSession(t, rec)
	require.NotEqual(t, refresh, out["refreshToken"])

	// Replaying the spent token is a 401, not a 404 or 400.
	rec = doJSON(t, h.Refresh, `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid or expired token", decodeSession(t, rec)["error"])
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	rec := doJSON(t, h.Refresh, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint_UnknownToken(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	rec := doJSON(t, h.Refresh, `{"refreshToken":"never-issued"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ----- logout -----

func TestLogoutEndpoint_AlwaysNoContent(t *testing.T) {
	t.Parallel()
	h := newAuthHandler()

	reg := decodeSession(t, doJSON(t, h.Register, registerBody))
	refresh := reg["refreshToken"].(string)

	require.Equal(t, http.StatusNoContent, doJSON(t, h.Logout, `{"refreshToken":"`+refresh+`"}`).Code)
	// Logging out twice, or with a token that never existed, is still 204.
	require.Equal(t, http.StatusNoContent, doJSON(t, h.Logout, `{"refreshToken":"`+refresh+`"}`).Code)
	require.Equal(t, http.StatusNoContent, doJSON(t, h.Logout, `{"refreshToken":"never-issued"}`).Code)
	require.Equal(t, http.StatusNoContent, doJSON(t, h.Logout, `{}`).Code)

	// The session really is gone.
	rec := doJSON(t, h.Refresh, `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
