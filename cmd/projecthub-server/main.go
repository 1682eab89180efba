package main

import (
	"context"
	"flag"
	"log"

	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/mikepea/projecthub/pkg/projecthub/config"
	"github.com/mikepea/projecthub/pkg/projecthub/database"
	"github.com/mikepea/projecthub/pkg/projecthub/logger"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"github.com/mikepea/projecthub/pkg/projecthub/ratelimit"
	"github.com/mikepea/projecthub/pkg/projecthub/server"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title ProjectHub API
// @version 1.0
// @description Project group formation and deliverable selection for university courses.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	configPath := flag.String("config", "projecthub.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	if err := database.Connect(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	db := database.GetDB()

	if err := models.AutoMigrate(db); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}
	zl.Info("database migrations completed", zap.String("driver", cfg.Database.Driver))

	ctx := context.Background()
	if err := server.EnsureRootAdmin(ctx, db, cfg.Auth.RootEmail, cfg.Auth.RootPassword, zl); err != nil {
		zl.Fatal("failed to ensure root admin exists", zap.Error(err))
	}

	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, throttling will fail open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.Throttle.Limit, cfg.Throttle.Window.Std())
	} else {
		zl.Info("no redis configured, throttling disabled")
	}

	router := server.NewRouter(server.Deps{
		DB:      db,
		Tokens:  auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Std()),
		Log:     zl,
		Limiter: limiter,
	})

	zl.Info("starting ProjectHub server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
