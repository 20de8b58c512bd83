package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/clipverse/clipverse/internal/config"
	"github.com/clipverse/clipverse/internal/database"
	"github.com/clipverse/clipverse/internal/handler"
	"github.com/clipverse/clipverse/internal/media"
	"github.com/clipverse/clipverse/internal/middleware"
	"github.com/clipverse/clipverse/internal/queue"
	"github.com/clipverse/clipverse/internal/repository"
	"github.com/clipverse/clipverse/internal/router"
	"github.com/clipverse/clipverse/internal/session"
	"github.com/clipverse/clipverse/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and response caching disabled")
	}

	codec := utils.NewTokenCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	users := repository.NewUserRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	sessions := session.NewManager(users, codec)

	var uploader *media.Uploader
	if mcfg := config.LoadMediaConfig(); mcfg.Enabled {
		uploader, err = media.NewUploader(context.Background(), mcfg)
		if err != nil {
			log.Printf("media storage unavailable: %v; uploads disabled", err)
			uploader = nil
		}
	}

	// Background consumer for account events (audit log).
	go func() {
		if err := queue.StartUserRegisteredConsumer(); err != nil {
			log.Printf("account-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), codec, limiter)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users, uploader), codec, cache)
	router.RegisterSubscriptions(e, handler.NewSubscriptionHandler(users, subs), codec)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
