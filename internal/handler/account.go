package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aarwitz/fitlink-backend/internal/repository"
	"github.com/aarwitz/fitlink-backend/internal/service"
)

// AccountHandler serves the authenticated user's own account: profile
// view/update, password change and deletion.  All routes sit behind the
// JWT middleware.
type AccountHandler struct {
	Sessions *service.SessionService
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
}

func NewAccountHandler(sessions *service.SessionService, users *repository.UserRepo, tokens *repository.TokenRepo) *AccountHandler {
	return &AccountHandler{Sessions: sessions, Users: users, Tokens: tokens}
}

type updateProfileReq struct {
	Name            string `json:"name"`
	BuildingName    string `json:"buildingName"`
	IsBuildingOwner bool   `json:"isBuildingOwner"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Me returns the caller's public profile plus the number of currently
// active sessions (usable refresh tokens).
func (h *AccountHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sessions, err := h.Tokens.ActiveCountForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":           toUserView(u),
		"activeSessions": sessions,
	})
}

// UpdateProfile changes the caller's display name and building fields.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": echo.Map{"name": "name is required"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, strings.TrimSpace(req.Name), req.BuildingName, req.IsBuildingOwner); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserView(u)})
}

// ChangePassword verifies the current password and stores the new one.
// Whether other sessions survive is a deployment policy, not a client
// choice.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAccount revokes every session and removes the account.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.DeleteAccount(ctx, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
