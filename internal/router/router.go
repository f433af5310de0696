package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/aarwitz/fitlink-backend/internal/handler"
	"github.com/aarwitz/fitlink-backend/internal/middleware"
	"github.com/aarwitz/fitlink-backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session lifecycle routes.  Register, login,
// refresh and logout live under /v1/auth and need no existing session;
// account routes live under /v1 behind the JWT middleware.  The rate
// limiter is applied per group, after JWTAuth on the protected one, so
// authenticated buckets key on the user id while the anonymous auth
// endpoints share the per-IP "anon" bucket.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, acct *handler.AccountHandler, jwtSecret string, rateMW echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.Use(rateMW)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the presented refresh token: it is spent atomically and a
	// new access+refresh pair is returned.
	g.POST("/refresh", a.Refresh)
	// Revokes the refresh token in the body.  Always answers 204, so a
	// retried logout cannot fail.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.Use(rateMW)
	auth.GET("/me", acct.Me)
	auth.PUT("/me", acct.UpdateProfile)
	auth.PUT("/me/password", acct.ChangePassword)
	auth.DELETE("/me", acct.DeleteAccount)
}

// RegisterSocial registers the feed, friends, chat and notification
// routes.  Everything here requires a valid access token.  The optional
// cache middleware (Redis-backed) is applied to the feed listing only;
// write endpoints and per-conversation reads stay uncached.
func RegisterSocial(e *echo.Echo, feed *handler.FeedHandler, friends *handler.FriendHandler,
	chat *handler.ChatHandler, notifs *handler.NotificationHandler, jwtSecret string,
	rateMW, cacheMW echo.MiddlewareFunc) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	g.Use(rateMW)

	// Feed
	if cacheMW != nil {
		g.GET("/feed", feed.GetFeed, cacheMW)
	} else {
		g.GET("/feed", feed.GetFeed)
	}
	g.POST("/posts", feed.CreatePost)
	g.DELETE("/posts/:id", feed.DeletePost)
	g.GET("/users/:id/posts", feed.GetUserPosts)

	// Friends
	g.POST("/friends", friends.Request)
	g.POST("/friends/:id/accept", friends.Accept)
	g.GET("/friends", friends.List)
	g.DELETE("/friends/:id", friends.Remove)

	// Chat
	g.POST("/messages", chat.Send)
	g.GET("/messages/:id", chat.Conversation)

	// Notifications
	g.GET("/notifications", notifs.List)
	g.POST("/notifications/:id/read", notifs.MarkRead)
}
