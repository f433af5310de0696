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

// ChatHandler serves direct messages between friends.
type ChatHandler struct {
	Messages *repository.MessageRepo
	Friends  *repository.FriendRepo
	Users    *repository.UserRepo
}

func NewChatHandler(messages *repository.MessageRepo, friends *repository.FriendRepo, users *repository.UserRepo) *ChatHandler {
	return &ChatHandler{Messages: messages, Friends: friends, Users: users}
}

type sendMessageReq struct {
	UserID uint64 `json:"userId"`
	Body   string `json:"body"`
}

type messageView struct {
	ID         uint64 `json:"id"`
	SenderID   uint64 `json:"senderId"`
	ReceiverID uint64 `json:"receiverId"`
	Body       string `json:"body"`
	CreatedAt  string `json:"createdAt"`
}

func toMessageView(m model.Message) messageView {
	return messageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Send handles POST /v1/messages.  Messages only flow between accepted
// friends; anything else is 403.
func (h *ChatHandler) Send(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId required"})
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message body required"})
	}
	if req.UserID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Friends.AreFriends(ctx, userID, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only message friends"})
	}

	m := model.Message{SenderID: userID, ReceiverID: req.UserID, Body: body}
	id, err := h.Messages.Create(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
	}
	m.ID = id
	m.CreatedAt = time.Now().UTC()

	// Best-effort notification; chat delivery never depends on the broker.
	senderName := ""
	if sender, err := h.Users.GetByID(ctx, userID); err == nil {
		senderName = sender.Name
	}
	_ = queue.PublishNotification(ctx, queue.NotificationEvent{
		UserID:     req.UserID,
		ActorID:    userID,
		ActorName:  senderName,
		Kind:       model.NotifyNewMessage,
		Body:       fmt.Sprintf("%s sent you a message", senderName),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toMessageView(m))
}

// Conversation handles GET /v1/messages/:id: the thread between the
// caller and the given user, oldest first.
func (h *ChatHandler) Conversation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || otherID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	limit := limitParam(c, 100, 500)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.Conversation(ctx, userID, otherID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}
