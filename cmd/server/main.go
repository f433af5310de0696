package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aarwitz/fitlink-backend/internal/config"
	"github.com/aarwitz/fitlink-backend/internal/database"
	"github.com/aarwitz/fitlink-backend/internal/handler"
	"github.com/aarwitz/fitlink-backend/internal/middleware"
	"github.com/aarwitz/fitlink-backend/internal/queue"
	"github.com/aarwitz/fitlink-backend/internal/repository"
	"github.com/aarwitz/fitlink-backend/internal/router"
	"github.com/aarwitz/fitlink-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	posts := repository.NewPostRepo(db)
	friends := repository.NewFriendRepo(db)
	messages := repository.NewMessageRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Session service (auth core)
	sessions := service.NewSessionService(cfg, users, tokens)

	// Handlers
	authH := handler.NewAuthHandler(sessions)
	acctH := handler.NewAccountHandler(sessions, users, tokens)
	feedH := handler.NewFeedHandler(posts)
	friendH := handler.NewFriendHandler(friends, users)
	chatH := handler.NewChatHandler(messages, friends, users)
	notifH := handler.NewNotificationHandler(notifications)

	// Redis is optional: rate limiting and feed caching degrade to
	// pass-through middleware when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Notification consumer runs for the life of the process and
	// reconnects on broker failures.
	go queue.StartNotificationConsumer(notifications)

	e := echo.New()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, acctH, cfg.JWTSecret, rateMW)
	router.RegisterSocial(e, feedH, friendH, chatH, notifH, cfg.JWTSecret, rateMW, cacheMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
