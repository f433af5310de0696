package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aarwitz/fitlink-backend/internal/model"
	"github.com/aarwitz/fitlink-backend/internal/queue"
	"github.com/aarwitz/fitlink-backend/internal/repository"
)

// FriendHandler serves friend requests and the friend list.  Requests and
// acceptances emit notification events to the broker; delivery failures
// are ignored because a lost notification must not fail the operation.
type FriendHandler struct {
	Friends *repository.FriendRepo
	Users   *repository.UserRepo
}

func NewFriendHandler(friends *repository.FriendRepo, users *repository.UserRepo) *FriendHandler {
	return &FriendHandler{Friends: friends, Users: users}
}

type friendRequestReq struct {
	UserID uint64 `json:"userId"`
}

type friendView struct {
	ID         uint64 `json:"id"`
	FriendID   uint64 `json:"friendId"`
	FriendName string `json:"friendName"`
	Status     string `json:"status"`
	Outgoing   bool   `json:"outgoing"`
	CreatedAt  string `json:"createdAt"`
}

// Request handles POST /v1/friends: send a friend request.
func (h *FriendHandler) Request(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req friendRequestReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId required"})
	}
	if req.UserID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot befriend yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The addressee must exist; the requester is known from the token.
	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	id, err := h.Friends.Request(ctx, userID, req.UserID)
	if err != nil {
		if err == repository.ErrFriendshipExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "friendship already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}

	h.notify(ctx, req.UserID, userID, model.NotifyFriendRequest, "sent you a friend request")

	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": model.FriendshipPending})
}

// Accept handles POST /v1/friends/:id/accept.  Only the addressee of a
// pending request may accept it.
func (h *FriendHandler) Accept(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	friendshipID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || friendshipID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid friendship id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Friends.Accept(ctx, friendshipID, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending request"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "accept failed"})
	}

	h.notify(ctx, f.RequesterID, userID, model.NotifyFriendAccepted, "accepted your friend request")

	return c.JSON(http.StatusOK, echo.Map{"id": f.ID, "status": f.Status})
}

// List handles GET /v1/friends with an optional ?status=PENDING|ACCEPTED.
func (h *FriendHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != "" && status != model.FriendshipPending && status != model.FriendshipAccepted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Friends.ListForUser(ctx, userID, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]friendView, 0, len(items))
	for _, it := range items {
		out = append(out, friendView{
			ID:         it.Friendship.ID,
			FriendID:   it.FriendID,
			FriendName: it.FriendName,
			Status:     it.Friendship.Status,
			Outgoing:   it.Friendship.RequesterID == userID,
			CreatedAt:  it.Friendship.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": out})
}

// Remove handles DELETE /v1/friends/:id: decline a request or unfriend.
func (h *FriendHandler) Remove(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	friendshipID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || friendshipID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid friendship id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Friends.Remove(ctx, friendshipID, userID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "friendship not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// notify publishes a notification event for recipient, naming the actor.
// Best-effort: the actor lookup and the publish both swallow errors.
func (h *FriendHandler) notify(ctx context.Context, recipientID, actorID uint64, kind, verb string) {
	actorName := ""
	if actor, err := h.Users.GetByID(ctx, actorID); err == nil {
		actorName = actor.Name
	}
	_ = queue.PublishNotification(ctx, queue.NotificationEvent{
		UserID:     recipientID,
		ActorID:    actorID,
		ActorName:  actorName,
		Kind:       kind,
		Body:       fmt.Sprintf("%s %s", actorName, verb),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
