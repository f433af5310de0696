package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aarwitz/fitlink-backend/internal/model"
	"github.com/aarwitz/fitlink-backend/internal/repository"
)

// FeedHandler serves workout posts: creating them and listing the feed.
type FeedHandler struct {
	Posts *repository.PostRepo
}

func NewFeedHandler(posts *repository.PostRepo) *FeedHandler {
	return &FeedHandler{Posts: posts}
}

type createPostReq struct {
	Body           string `json:"body"`
	Activity       string `json:"activity"`
	DurationMin    uint32 `json:"durationMin"`
	DistanceMeters uint32 `json:"distanceMeters"`
}

type postView struct {
	ID             uint64 `json:"id"`
	AuthorID       uint64 `json:"authorId"`
	AuthorName     string `json:"authorName,omitempty"`
	Body           string `json:"body"`
	Activity       string `json:"activity,omitempty"`
	DurationMin    uint32 `json:"durationMin,omitempty"`
	DistanceMeters uint32 `json:"distanceMeters,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

func toPostView(p model.Post, authorName string) postView {
	return postView{
		ID:             p.ID,
		AuthorID:       p.AuthorID,
		AuthorName:     authorName,
		Body:           p.Body,
		Activity:       p.Activity,
		DurationMin:    p.DurationMin,
		DistanceMeters: p.DistanceMeters,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreatePost handles POST /v1/posts.
func (h *FeedHandler) CreatePost(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Body) == "" && req.Activity == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "post needs text or an activity"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Post{
		AuthorID:       userID,
		Body:           strings.TrimSpace(req.Body),
		Activity:       strings.ToUpper(strings.TrimSpace(req.Activity)),
		DurationMin:    req.DurationMin,
		DistanceMeters: req.DistanceMeters,
	}
	id, err := h.Posts.Create(ctx, p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}
	p.ID = id
	p.CreatedAt = time.Now().UTC()
	return c.JSON(http.StatusCreated, toPostView(p, ""))
}

// GetFeed handles GET /v1/feed: the caller's posts and those of accepted
// friends, newest first.  Sits behind the Redis response cache.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := limitParam(c, 50, 100)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Posts.Feed(ctx, userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]postView, 0, len(items))
	for _, it := range items {
		out = append(out, toPostView(it.Post, it.AuthorName))
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": out})
}

// GetUserPosts handles GET /v1/users/:id/posts.
func (h *FeedHandler) GetUserPosts(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || authorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	limit := limitParam(c, 50, 100)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListByAuthor(ctx, authorID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostView(p, ""))
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": out})
}

// DeletePost handles DELETE /v1/posts/:id.  Only the author may delete.
func (h *FeedHandler) DeletePost(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || postID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Posts.Delete(ctx, postID, userID); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
}
