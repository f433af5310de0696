package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aarwitz/fitlink-backend/internal/model"
	"github.com/aarwitz/fitlink-backend/internal/service"
)

// getUserID extracts the authenticated user id placed into the context by
// the JWT middleware.  Handlers on protected routes can rely on it being
// present; a missing or mistyped value means the route was wired without
// the middleware and is treated as unauthorized.
func getUserID(c echo.Context) (uint64, error) {
	v, ok := c.Get("user_id").(uint64)
	if !ok || v == 0 {
		return 0, errors.New("no authenticated user in context")
	}
	return v, nil
}

// limitParam reads a ?limit= query parameter clamped to [1, max], with a
// default when absent or unparsable.
func limitParam(c echo.Context, def, max int) int {
	s := c.QueryParam("limit")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// userView is the public projection of a user: everything a client may
// see, and nothing it may not (the password hash stays server-side).
type userView struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	BuildingName    string `json:"buildingName"`
	IsBuildingOwner bool   `json:"isBuildingOwner"`
}

func toUserView(u model.User) userView {
	return userView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		BuildingName:    u.BuildingName,
		IsBuildingOwner: u.IsBuildingOwner,
	}
}

// sessionResp is the wire shape of a successful register/login/refresh.
type sessionResp struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int      `json:"expiresIn"`
	User         userView `json:"user"`
}

func toSessionResp(s service.Session) sessionResp {
	return sessionResp{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         toUserView(s.User),
	}
}

// writeServiceError maps session-service errors onto HTTP responses.  The
// 401 messages are intentionally generic: they never reveal whether the
// email, the password or the token was the failing part.
func writeServiceError(c echo.Context, err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": vErr.Fields})
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidRefresh):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
